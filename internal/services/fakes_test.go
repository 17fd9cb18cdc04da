package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"restaurant_backend/internal/models"
	"restaurant_backend/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var errInjected = errors.New("injected storage failure")

var testDeliveryCodes = []models.DeliveryStatusCode{
	models.DeliveryStatusPending,
	models.DeliveryStatusDelivering,
	models.DeliveryStatusDelivered,
	models.DeliveryStatusFailed,
}

// Status ids in the fake are 1-based positions in the code lists.
func idOf[T comparable](codes []T, code T) int64 {
	return int64(slices.Index(codes, code) + 1)
}

func codeOf[T any](codes []T, id int64) T {
	return codes[id-1]
}

func rowsOf[T ~string](codes []T, skip T) []models.StatusRow {
	rows := make([]models.StatusRow, 0, len(codes))
	for i, c := range codes {
		if c == skip {
			continue
		}
		rows = append(rows, models.StatusRow{ID: int64(i + 1), Code: string(c), Name: string(c)})
	}
	return rows
}

// --- status repository ---

type fakeStatusRepo struct {
	missingItemStatus models.OrderItemStatusCode
	extraDelivery     map[string]int64
	lookups           int
}

func (r *fakeStatusRepo) ListOrderStatuses(ctx context.Context) ([]models.StatusRow, error) {
	return rowsOf(models.OrderStatusCodes, ""), nil
}

func (r *fakeStatusRepo) ListOrderItemStatuses(ctx context.Context) ([]models.StatusRow, error) {
	return rowsOf(models.OrderItemStatusCodes, r.missingItemStatus), nil
}

func (r *fakeStatusRepo) ListDeliveryStatuses(ctx context.Context) ([]models.StatusRow, error) {
	return rowsOf(testDeliveryCodes, ""), nil
}

func (r *fakeStatusRepo) ListOrderTypes(ctx context.Context) ([]models.StatusRow, error) {
	return rowsOf(models.OrderTypeCodes, ""), nil
}

func (r *fakeStatusRepo) FindDeliveryStatusByCode(ctx context.Context, code string) (*models.StatusRow, error) {
	r.lookups++
	if id, ok := r.extraDelivery[code]; ok {
		return &models.StatusRow{ID: id, Code: code, Name: code}, nil
	}
	return nil, fmt.Errorf("%w: delivery status %s", repositories.ErrNotFound, code)
}

// --- in-memory store ---

type storeData struct {
	seq        int64
	users      map[int64]models.User
	hashes     map[int64]string
	tables     map[int64]models.DiningTable
	menu       map[int64]models.MenuItem
	orders     map[int64]models.Order
	items      map[int64]models.OrderItem
	ledger     []models.OrderItemStatusEntry
	infos      map[int64]models.OrderDeliveryInfo
	carts      map[int64]models.Cart
	cartItems  map[int64]models.CartItem
	sessions   map[int64]models.OrderSession
	shippers   map[int64]models.OrderShipper
	deliveries map[int64]models.Delivery
}

func (d storeData) clone() storeData {
	c := d
	c.users = maps.Clone(d.users)
	c.hashes = maps.Clone(d.hashes)
	c.tables = maps.Clone(d.tables)
	c.menu = maps.Clone(d.menu)
	c.orders = maps.Clone(d.orders)
	c.items = maps.Clone(d.items)
	c.ledger = slices.Clone(d.ledger)
	c.infos = maps.Clone(d.infos)
	c.carts = maps.Clone(d.carts)
	c.cartItems = maps.Clone(d.cartItems)
	c.sessions = maps.Clone(d.sessions)
	c.shippers = maps.Clone(d.shippers)
	c.deliveries = maps.Clone(d.deliveries)
	return c
}

// fakeStore implements every executor-based repository plus Transactor.
// Transactions are serialized and a failed one restores the snapshot taken at its start,
// which mirrors row locks plus rollback closely enough for service tests.
type fakeStore struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data storeData

	calls     map[string]int
	failAfter map[string]int
	commits   int
	rollbacks int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		data: storeData{
			users:      map[int64]models.User{},
			hashes:     map[int64]string{},
			tables:     map[int64]models.DiningTable{},
			menu:       map[int64]models.MenuItem{},
			orders:     map[int64]models.Order{},
			items:      map[int64]models.OrderItem{},
			infos:      map[int64]models.OrderDeliveryInfo{},
			carts:      map[int64]models.Cart{},
			cartItems:  map[int64]models.CartItem{},
			sessions:   map[int64]models.OrderSession{},
			shippers:   map[int64]models.OrderShipper{},
			deliveries: map[int64]models.Delivery{},
		},
		calls:     map[string]int{},
		failAfter: map[string]int{},
	}
}

// failOn makes op fail after it has succeeded n times.
func (s *fakeStore) failOn(op string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAfter[op] = n
}

// enter locks the store and applies failure injection; callers must unlock.
func (s *fakeStore) enter(op string) error {
	s.mu.Lock()
	s.calls[op]++
	if n, ok := s.failAfter[op]; ok && s.calls[op] > n {
		return fmt.Errorf("%w: %s", errInjected, op)
	}
	return nil
}

func (s *fakeStore) nextID() int64 {
	s.data.seq++
	return s.data.seq
}

func notFound(what string, id interface{}) error {
	return fmt.Errorf("%w: %s %v", repositories.ErrNotFound, what, id)
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(tx repositories.SQLExecutor) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.data.clone()
	s.mu.Unlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.data = snap
		s.rollbacks++
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.commits++
	s.mu.Unlock()
	return nil
}

// --- seeding helpers ---

func (s *fakeStore) addMenuItem(name, category, price string, available bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID()
	s.data.menu[id] = models.MenuItem{
		ID: id, Name: name, CategoryName: category,
		Price: decimal.RequireFromString(price), IsAvailable: available,
	}
	return id
}

func (s *fakeStore) setMenuPrice(id int64, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.data.menu[id]
	m.Price = decimal.RequireFromString(price)
	s.data.menu[id] = m
}

func (s *fakeStore) setMenuAvailable(id int64, available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.data.menu[id]
	m.IsAvailable = available
	s.data.menu[id] = m
}

func (s *fakeStore) addTable(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID()
	s.data.tables[id] = models.DiningTable{ID: id, Name: name, Seats: 4}
	return id
}

func (s *fakeStore) addUser(username, role string, active bool, hash string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID()
	s.data.users[id] = models.User{ID: id, Username: username, IsActive: active, Role: &models.Role{Name: role}}
	s.data.hashes[id] = hash
	return id
}

// seedOrder inserts an order of typ in status with one PENDING ledger entry per item.
func (s *fakeStore) seedOrder(t *testing.T, typ models.OrderTypeCode, status models.OrderStatusCode, at time.Time, quantities ...int) (int64, []int64) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	orderID := s.nextID()
	s.data.orders[orderID] = models.Order{
		ID: orderID, OrderCode: fmt.Sprintf("ORD-%d", orderID),
		OrderTypeID: idOf(models.OrderTypeCodes, typ), OrderType: typ,
		StatusID: idOf(models.OrderStatusCodes, status), Status: status,
		TotalAmount: decimal.NewFromInt(int64(len(quantities))), CreatedAt: at, UpdatedAt: at,
	}
	var itemIDs []int64
	for _, q := range quantities {
		itemID := s.nextID()
		s.data.items[itemID] = models.OrderItem{ID: itemID, OrderID: orderID, MenuItemID: 0, Quantity: q, UnitPrice: decimal.NewFromInt(1), CreatedAt: at}
		s.data.ledger = append(s.data.ledger, models.OrderItemStatusEntry{
			ID: s.nextID(), OrderItemID: itemID,
			StatusID: idOf(models.OrderItemStatusCodes, models.ItemStatusPending), Status: models.ItemStatusPending,
			ChangedAt: at,
		})
		itemIDs = append(itemIDs, itemID)
	}
	return orderID, itemIDs
}

func (s *fakeStore) setTable(orderID, tableID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.data.orders[orderID]
	o.TableID = &tableID
	s.data.orders[orderID] = o
}

func (s *fakeStore) orderStatus(orderID int64) models.OrderStatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.orders[orderID].Status
}

func (s *fakeStore) itemStatus(itemID int64) models.OrderItemStatusCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, _ := s.data.latest(itemID)
	return e.Status
}

func (s *fakeStore) ledgerLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.ledger)
}

func (s *fakeStore) counts() (orders, items, infos int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.orders), len(s.data.items), len(s.data.infos)
}

// latest is the item's current ledger entry: newest timestamp, then highest id.
func (d *storeData) latest(itemID int64) (models.OrderItemStatusEntry, bool) {
	var best models.OrderItemStatusEntry
	found := false
	for _, e := range d.ledger {
		if e.OrderItemID != itemID {
			continue
		}
		if !found || e.ChangedAt.After(best.ChangedAt) || (e.ChangedAt.Equal(best.ChangedAt) && e.ID > best.ID) {
			best, found = e, true
		}
	}
	return best, found
}

func (d *storeData) itemView(it models.OrderItem) models.OrderItem {
	it.MenuItemName = d.menu[it.MenuItemID].Name
	it.StatusChangedAt = it.CreatedAt
	if e, ok := d.latest(it.ID); ok {
		it.Status, it.StatusEntryID, it.StatusChangedAt = e.Status, e.ID, e.ChangedAt
	}
	return it
}

// --- OrderRepository ---

func (s *fakeStore) CreateOrder(ctx context.Context, _ repositories.SQLExecutor, order *models.Order) error {
	defer s.mu.Unlock()
	if err := s.enter("CreateOrder"); err != nil {
		return err
	}
	order.ID = s.nextID()
	order.UpdatedAt = order.CreatedAt
	stored := *order
	stored.Items, stored.DeliveryInfo = nil, nil
	s.data.orders[order.ID] = stored
	return nil
}

func (s *fakeStore) GetOrderByID(ctx context.Context, _ repositories.SQLExecutor, orderID int64) (*models.Order, error) {
	defer s.mu.Unlock()
	if err := s.enter("GetOrderByID"); err != nil {
		return nil, err
	}
	o, ok := s.data.orders[orderID]
	if !ok {
		return nil, notFound("order", orderID)
	}
	return &o, nil
}

func (s *fakeStore) LockOrder(ctx context.Context, _ repositories.SQLExecutor, orderID int64) (*models.Order, error) {
	defer s.mu.Unlock()
	if err := s.enter("LockOrder"); err != nil {
		return nil, err
	}
	o, ok := s.data.orders[orderID]
	if !ok {
		return nil, notFound("order", orderID)
	}
	return &o, nil
}

func (s *fakeStore) GetOrders(ctx context.Context, _ repositories.SQLExecutor, f models.OrderFilters) ([]models.Order, int, error) {
	defer s.mu.Unlock()
	if err := s.enter("GetOrders"); err != nil {
		return nil, 0, err
	}
	var out []models.Order
	for _, o := range s.data.orders {
		switch {
		case f.UserID != nil && (o.UserID == nil || *o.UserID != *f.UserID),
			f.TableID != nil && (o.TableID == nil || *o.TableID != *f.TableID),
			f.Status != nil && string(o.Status) != *f.Status,
			f.OrderType != nil && string(o.OrderType) != *f.OrderType,
			f.Since != nil && o.CreatedAt.Before(*f.Since):
			continue
		}
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b models.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(b.ID - a.ID)
	})
	total := len(out)
	if f.PageSize > 0 {
		page := max(f.Page, 1)
		start := min((page-1)*f.PageSize, total)
		out = out[start:min(start+f.PageSize, total)]
	}
	return out, total, nil
}

func (s *fakeStore) UpdateOrderStatus(ctx context.Context, _ repositories.SQLExecutor, orderID, statusID int64, updatedAt time.Time) error {
	defer s.mu.Unlock()
	if err := s.enter("UpdateOrderStatus"); err != nil {
		return err
	}
	o, ok := s.data.orders[orderID]
	if !ok {
		return notFound("order", orderID)
	}
	o.StatusID, o.Status, o.UpdatedAt = statusID, codeOf(models.OrderStatusCodes, statusID), updatedAt
	s.data.orders[orderID] = o
	return nil
}

func (s *fakeStore) CreateOrderItem(ctx context.Context, _ repositories.SQLExecutor, item *models.OrderItem) error {
	defer s.mu.Unlock()
	if err := s.enter("CreateOrderItem"); err != nil {
		return err
	}
	item.ID = s.nextID()
	s.data.items[item.ID] = *item
	return nil
}

func (s *fakeStore) GetOrderItem(ctx context.Context, _ repositories.SQLExecutor, itemID int64) (*models.OrderItem, error) {
	defer s.mu.Unlock()
	if err := s.enter("GetOrderItem"); err != nil {
		return nil, err
	}
	it, ok := s.data.items[itemID]
	if !ok {
		return nil, notFound("order item", itemID)
	}
	v := s.data.itemView(it)
	return &v, nil
}

func (s *fakeStore) LockOrderItem(ctx context.Context, exec repositories.SQLExecutor, itemID int64) (*models.OrderItem, error) {
	return s.GetOrderItem(ctx, exec, itemID)
}

func (s *fakeStore) GetOrderItems(ctx context.Context, _ repositories.SQLExecutor, orderID int64) ([]models.OrderItem, error) {
	defer s.mu.Unlock()
	if err := s.enter("GetOrderItems"); err != nil {
		return nil, err
	}
	out := []models.OrderItem{}
	for _, it := range s.data.items {
		if it.OrderID == orderID {
			out = append(out, s.data.itemView(it))
		}
	}
	slices.SortFunc(out, func(a, b models.OrderItem) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s *fakeStore) LockOrderItems(ctx context.Context, exec repositories.SQLExecutor, orderID int64) ([]models.OrderItem, error) {
	return s.GetOrderItems(ctx, exec, orderID)
}

func (s *fakeStore) CreateDeliveryInfo(ctx context.Context, _ repositories.SQLExecutor, info *models.OrderDeliveryInfo) error {
	defer s.mu.Unlock()
	if err := s.enter("CreateDeliveryInfo"); err != nil {
		return err
	}
	info.ID = s.nextID()
	s.data.infos[info.OrderID] = *info
	return nil
}

func (s *fakeStore) GetDeliveryInfo(ctx context.Context, _ repositories.SQLExecutor, orderID int64) (*models.OrderDeliveryInfo, error) {
	defer s.mu.Unlock()
	if err := s.enter("GetDeliveryInfo"); err != nil {
		return nil, err
	}
	info, ok := s.data.infos[orderID]
	if !ok {
		return nil, notFound("delivery info of order", orderID)
	}
	return &info, nil
}

// --- LedgerRepository ---

func (s *fakeStore) appendLocked(entry *models.OrderItemStatusEntry) {
	entry.ID = s.nextID()
	entry.Status = codeOf(models.OrderItemStatusCodes, entry.StatusID)
	s.data.ledger = append(s.data.ledger, *entry)
}

func (s *fakeStore) AppendStatus(ctx context.Context, _ repositories.SQLExecutor, entry *models.OrderItemStatusEntry) error {
	defer s.mu.Unlock()
	if err := s.enter("AppendStatus"); err != nil {
		return err
	}
	s.appendLocked(entry)
	return nil
}

func (s *fakeStore) AppendStatusIfLatest(ctx context.Context, _ repositories.SQLExecutor, entry *models.OrderItemStatusEntry, observedEntryID int64) error {
	defer s.mu.Unlock()
	if err := s.enter("AppendStatusIfLatest"); err != nil {
		return err
	}
	latest, _ := s.data.latest(entry.OrderItemID)
	if latest.ID != observedEntryID {
		return fmt.Errorf("%w: item %d latest is %d, observed %d", repositories.ErrConflict, entry.OrderItemID, latest.ID, observedEntryID)
	}
	s.appendLocked(entry)
	return nil
}

func (s *fakeStore) LatestStatus(ctx context.Context, _ repositories.SQLExecutor, itemID int64) (*models.OrderItemStatusEntry, error) {
	defer s.mu.Unlock()
	if err := s.enter("LatestStatus"); err != nil {
		return nil, err
	}
	e, ok := s.data.latest(itemID)
	if !ok {
		return nil, notFound("status of order item", itemID)
	}
	return &e, nil
}

func (s *fakeStore) StatusHistory(ctx context.Context, _ repositories.SQLExecutor, itemID int64) ([]models.OrderItemStatusEntry, error) {
	defer s.mu.Unlock()
	if err := s.enter("StatusHistory"); err != nil {
		return nil, err
	}
	out := []models.OrderItemStatusEntry{}
	for _, e := range s.data.ledger {
		if e.OrderItemID == itemID {
			out = append(out, e)
		}
	}
	slices.SortStableFunc(out, func(a, b models.OrderItemStatusEntry) int {
		if c := a.ChangedAt.Compare(b.ChangedAt); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	return out, nil
}

// --- MenuRepository ---

func (s *fakeStore) GetMenuItem(ctx context.Context, _ repositories.SQLExecutor, menuItemID int64) (*models.MenuItem, error) {
	defer s.mu.Unlock()
	if err := s.enter("GetMenuItem"); err != nil {
		return nil, err
	}
	m, ok := s.data.menu[menuItemID]
	if !ok {
		return nil, notFound("menu item", menuItemID)
	}
	return &m, nil
}

// --- CartRepository ---

func sameOwner(c models.Cart, owner models.CartOwner) bool {
	if owner.UserID != nil {
		return c.UserID != nil && *c.UserID == *owner.UserID
	}
	return c.TableID != nil && owner.TableID != nil && *c.TableID == *owner.TableID
}

func (s *fakeStore) GetActiveCart(ctx context.Context, _ repositories.SQLExecutor, owner models.CartOwner, forUpdate bool) (*models.Cart, error) {
	defer s.mu.Unlock()
	if err := s.enter("GetActiveCart"); err != nil {
		return nil, err
	}
	for _, c := range s.data.carts {
		if c.IsActive && sameOwner(c, owner) {
			return &c, nil
		}
	}
	return nil, notFound("active cart", "")
}

func (s *fakeStore) CreateCart(ctx context.Context, _ repositories.SQLExecutor, owner models.CartOwner) (*models.Cart, error) {
	defer s.mu.Unlock()
	if err := s.enter("CreateCart"); err != nil {
		return nil, err
	}
	for _, c := range s.data.carts {
		if c.IsActive && sameOwner(c, owner) {
			return nil, fmt.Errorf("%w: active cart exists", repositories.ErrDuplicateKey)
		}
	}
	c := models.Cart{ID: s.nextID(), UserID: owner.UserID, TableID: owner.TableID, IsActive: true}
	s.data.carts[c.ID] = c
	return &c, nil
}

func (s *fakeStore) MarkCartOrdered(ctx context.Context, _ repositories.SQLExecutor, cartID int64, orderedAt time.Time) error {
	defer s.mu.Unlock()
	if err := s.enter("MarkCartOrdered"); err != nil {
		return err
	}
	c, ok := s.data.carts[cartID]
	if !ok {
		return notFound("cart", cartID)
	}
	c.IsActive, c.OrderedAt = false, &orderedAt
	s.data.carts[cartID] = c
	return nil
}

func (s *fakeStore) cartLine(ci models.CartItem) models.CartItem {
	m := s.data.menu[ci.MenuItemID]
	ci.MenuItemName, ci.UnitPrice, ci.IsAvailable = m.Name, m.Price, m.IsAvailable
	return ci
}

func (s *fakeStore) ListCartItems(ctx context.Context, _ repositories.SQLExecutor, cartID int64) ([]models.CartItem, error) {
	defer s.mu.Unlock()
	if err := s.enter("ListCartItems"); err != nil {
		return nil, err
	}
	out := []models.CartItem{}
	for _, ci := range s.data.cartItems {
		if ci.CartID == cartID {
			out = append(out, s.cartLine(ci))
		}
	}
	slices.SortFunc(out, func(a, b models.CartItem) int { return int(a.ID - b.ID) })
	return out, nil
}

func (s *fakeStore) GetCartItem(ctx context.Context, _ repositories.SQLExecutor, cartID, cartItemID int64) (*models.CartItem, error) {
	defer s.mu.Unlock()
	if err := s.enter("GetCartItem"); err != nil {
		return nil, err
	}
	ci, ok := s.data.cartItems[cartItemID]
	if !ok || ci.CartID != cartID {
		return nil, notFound("cart item", cartItemID)
	}
	v := s.cartLine(ci)
	return &v, nil
}

func (s *fakeStore) FindCartLine(ctx context.Context, _ repositories.SQLExecutor, cartID, menuItemID int64, note string) (*models.CartItem, error) {
	defer s.mu.Unlock()
	if err := s.enter("FindCartLine"); err != nil {
		return nil, err
	}
	for _, ci := range s.data.cartItems {
		if ci.CartID == cartID && ci.MenuItemID == menuItemID && ci.Note == note {
			v := s.cartLine(ci)
			return &v, nil
		}
	}
	return nil, notFound("cart line for menu item", menuItemID)
}

func (s *fakeStore) CreateCartItem(ctx context.Context, _ repositories.SQLExecutor, item *models.CartItem) error {
	defer s.mu.Unlock()
	if err := s.enter("CreateCartItem"); err != nil {
		return err
	}
	item.ID = s.nextID()
	s.data.cartItems[item.ID] = *item
	return nil
}

func (s *fakeStore) UpdateCartItem(ctx context.Context, _ repositories.SQLExecutor, cartItemID int64, quantity int, note string, updatedAt time.Time) error {
	defer s.mu.Unlock()
	if err := s.enter("UpdateCartItem"); err != nil {
		return err
	}
	ci, ok := s.data.cartItems[cartItemID]
	if !ok {
		return notFound("cart item", cartItemID)
	}
	ci.Quantity, ci.Note, ci.UpdatedAt = quantity, note, updatedAt
	s.data.cartItems[cartItemID] = ci
	return nil
}

func (s *fakeStore) DeleteCartItem(ctx context.Context, _ repositories.SQLExecutor, cartID, cartItemID int64) error {
	defer s.mu.Unlock()
	if err := s.enter("DeleteCartItem"); err != nil {
		return err
	}
	ci, ok := s.data.cartItems[cartItemID]
	if !ok || ci.CartID != cartID {
		return notFound("cart item", cartItemID)
	}
	delete(s.data.cartItems, cartItemID)
	return nil
}

// --- SessionRepository ---

func (s *fakeStore) GetDiningTable(ctx context.Context, _ repositories.SQLExecutor, tableID int64) (*models.DiningTable, error) {
	defer s.mu.Unlock()
	if err := s.enter("GetDiningTable"); err != nil {
		return nil, err
	}
	t, ok := s.data.tables[tableID]
	if !ok {
		return nil, notFound("table", tableID)
	}
	return &t, nil
}

func (s *fakeStore) CreateSession(ctx context.Context, _ repositories.SQLExecutor, session *models.OrderSession) error {
	defer s.mu.Unlock()
	if err := s.enter("CreateSession"); err != nil {
		return err
	}
	session.ID = s.nextID()
	s.data.sessions[session.ID] = *session
	return nil
}

func (s *fakeStore) FindSessionByToken(ctx context.Context, _ repositories.SQLExecutor, token string) (*models.OrderSession, error) {
	defer s.mu.Unlock()
	if err := s.enter("FindSessionByToken"); err != nil {
		return nil, err
	}
	for _, sess := range s.data.sessions {
		if sess.Token == token {
			return &sess, nil
		}
	}
	return nil, notFound("session", "token")
}

func (s *fakeStore) DeactivateTableSessions(ctx context.Context, _ repositories.SQLExecutor, tableID int64) ([]string, error) {
	defer s.mu.Unlock()
	if err := s.enter("DeactivateTableSessions"); err != nil {
		return nil, err
	}
	var tokens []string
	for id, sess := range s.data.sessions {
		if sess.TableID == tableID && sess.IsActive {
			sess.IsActive = false
			s.data.sessions[id] = sess
			tokens = append(tokens, sess.Token)
		}
	}
	return tokens, nil
}

func (s *fakeStore) ListUnexpiredSessionTokens(ctx context.Context, _ repositories.SQLExecutor, tableID int64, now time.Time) ([]string, error) {
	defer s.mu.Unlock()
	if err := s.enter("ListUnexpiredSessionTokens"); err != nil {
		return nil, err
	}
	var tokens []string
	for _, sess := range s.data.sessions {
		if sess.TableID == tableID && sess.ExpiresAt.After(now) {
			tokens = append(tokens, sess.Token)
		}
	}
	slices.Sort(tokens)
	return tokens, nil
}

// --- DeliveryRepository ---

func (s *fakeStore) deliveryView(d models.Delivery) models.Delivery {
	d.ShipperID = s.data.shippers[d.OrderShipperID].ShipperID
	d.Status = codeOf(testDeliveryCodes, d.StatusID)
	return d
}

func (s *fakeStore) CreateOrderShipper(ctx context.Context, _ repositories.SQLExecutor, assignment *models.OrderShipper) error {
	defer s.mu.Unlock()
	if err := s.enter("CreateOrderShipper"); err != nil {
		return err
	}
	assignment.ID = s.nextID()
	s.data.shippers[assignment.ID] = *assignment
	return nil
}

func (s *fakeStore) CreateDelivery(ctx context.Context, _ repositories.SQLExecutor, delivery *models.Delivery) error {
	defer s.mu.Unlock()
	if err := s.enter("CreateDelivery"); err != nil {
		return err
	}
	for _, d := range s.data.deliveries {
		if d.OrderID == delivery.OrderID {
			return fmt.Errorf("%w: delivery for order %d", repositories.ErrDuplicateKey, delivery.OrderID)
		}
	}
	delivery.ID = s.nextID()
	delivery.UpdatedAt = delivery.CreatedAt
	s.data.deliveries[delivery.ID] = *delivery
	return nil
}

func (s *fakeStore) GetDeliveryByID(ctx context.Context, _ repositories.SQLExecutor, deliveryID int64, forUpdate bool) (*models.Delivery, error) {
	defer s.mu.Unlock()
	if err := s.enter("GetDeliveryByID"); err != nil {
		return nil, err
	}
	d, ok := s.data.deliveries[deliveryID]
	if !ok {
		return nil, notFound("delivery", deliveryID)
	}
	v := s.deliveryView(d)
	return &v, nil
}

func (s *fakeStore) GetDeliveryByOrderID(ctx context.Context, _ repositories.SQLExecutor, orderID int64, forUpdate bool) (*models.Delivery, error) {
	defer s.mu.Unlock()
	if err := s.enter("GetDeliveryByOrderID"); err != nil {
		return nil, err
	}
	for _, d := range s.data.deliveries {
		if d.OrderID == orderID {
			v := s.deliveryView(d)
			return &v, nil
		}
	}
	return nil, notFound("delivery of order", orderID)
}

func (s *fakeStore) ReassignDelivery(ctx context.Context, _ repositories.SQLExecutor, deliveryID, orderShipperID, statusID int64, updatedAt time.Time) error {
	defer s.mu.Unlock()
	if err := s.enter("ReassignDelivery"); err != nil {
		return err
	}
	d, ok := s.data.deliveries[deliveryID]
	if !ok {
		return notFound("delivery", deliveryID)
	}
	d.OrderShipperID, d.StatusID, d.UpdatedAt = orderShipperID, statusID, updatedAt
	s.data.deliveries[deliveryID] = d
	return nil
}

func (s *fakeStore) UpdateDeliveryStatus(ctx context.Context, _ repositories.SQLExecutor, deliveryID, statusID int64, updatedAt time.Time) error {
	defer s.mu.Unlock()
	if err := s.enter("UpdateDeliveryStatus"); err != nil {
		return err
	}
	d, ok := s.data.deliveries[deliveryID]
	if !ok {
		return notFound("delivery", deliveryID)
	}
	d.StatusID, d.UpdatedAt = statusID, updatedAt
	s.data.deliveries[deliveryID] = d
	return nil
}

func (s *fakeStore) ListShipperDeliveries(ctx context.Context, _ repositories.SQLExecutor, shipperID int64) ([]models.Delivery, error) {
	defer s.mu.Unlock()
	if err := s.enter("ListShipperDeliveries"); err != nil {
		return nil, err
	}
	out := []models.Delivery{}
	for _, d := range s.data.deliveries {
		if v := s.deliveryView(d); v.ShipperID == shipperID {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b models.Delivery) int { return int(a.ID - b.ID) })
	return out, nil
}

// --- AuthRepository ---

func (s *fakeStore) FindUserByUsername(ctx context.Context, _ repositories.SQLExecutor, username string) (*models.User, string, error) {
	defer s.mu.Unlock()
	if err := s.enter("FindUserByUsername"); err != nil {
		return nil, "", err
	}
	for id, u := range s.data.users {
		if u.Username == username {
			return &u, s.data.hashes[id], nil
		}
	}
	return nil, "", notFound("user", username)
}

func (s *fakeStore) FindUserByID(ctx context.Context, _ repositories.SQLExecutor, userID int64) (*models.User, error) {
	defer s.mu.Unlock()
	if err := s.enter("FindUserByID"); err != nil {
		return nil, err
	}
	u, ok := s.data.users[userID]
	if !ok {
		return nil, notFound("user", userID)
	}
	return &u, nil
}

var (
	_ repositories.OrderRepository    = (*fakeStore)(nil)
	_ repositories.LedgerRepository   = (*fakeStore)(nil)
	_ repositories.MenuRepository     = (*fakeStore)(nil)
	_ repositories.CartRepository     = (*fakeStore)(nil)
	_ repositories.SessionRepository  = (*fakeStore)(nil)
	_ repositories.DeliveryRepository = (*fakeStore)(nil)
	_ repositories.AuthRepository     = (*fakeStore)(nil)
	_ repositories.Transactor         = (*fakeStore)(nil)
	_ repositories.StatusRepository   = (*fakeStatusRepo)(nil)
)

// --- clock and wiring ---

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	store    *fakeStore
	clock    *testClock
	catalog  *StatusCatalog
	orders   *orderService
	carts    *cartService
	sessions *sessionService
	delivery *deliveryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newFakeStore()
	clock := newTestClock()
	catalog, err := LoadStatusCatalog(context.Background(), &fakeStatusRepo{})
	require.NoError(t, err)

	orders := NewOrderService(store, store, catalog, store, nil).(*orderService)
	orders.now = clock.Now

	carts := NewCartService(store, store, store, store, catalog, store, nil).(*cartService)
	carts.now = clock.Now

	sessions := NewSessionService(store, nil, nil, 0).(*sessionService)
	sessions.now = clock.Now

	delivery := NewDeliveryService(store, store, store, catalog, store, nil).(*deliveryService)
	delivery.now = clock.Now

	return &testEnv{store: store, clock: clock, catalog: catalog, orders: orders, carts: carts, sessions: sessions, delivery: delivery}
}
