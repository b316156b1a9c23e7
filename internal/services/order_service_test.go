package services_test

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sync"
	"testing"
	"time"

	"leder/internal/domain"
	"leder/internal/repos"
	"leder/internal/services"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listNumbers replays fixed candidates, repeating the last one.
type listNumbers struct {
	mu  sync.Mutex
	seq []string
}

func (n *listNumbers) Next() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	s := n.seq[0]
	if len(n.seq) > 1 {
		n.seq = n.seq[1:]
	}
	return s
}

func newOrderService(db *sqlx.DB, numbers services.NumberSource) *services.OrderService {
	if numbers == nil {
		g := services.NewOrderNumbers("LD")
		g.Seed(42)
		numbers = g
	}
	return services.NewOrderService(db, repos.NewProductRepo(db), repos.NewInventoryRepo(db), repos.NewOrderRepo(db), numbers)
}

func checkout(lines ...services.OrderLine) services.NewOrder {
	return services.NewOrder{
		Customer:     domain.Customer{FirstName: "Олена", LastName: "Коваль", Email: "Olena@Example.com", Phone: "+380501234567"},
		Shipping:     domain.Shipping{City: "Київ", CityRef: "city-kyiv", Warehouse: "Відділення №1", WarehouseRef: "wh-1"},
		Items:        lines,
		ShippingCost: decimal.NewFromInt(70),
	}
}

func line(p *domain.Product, variant, qty int) services.OrderLine {
	return services.OrderLine{ProductID: p.ID, VariantID: p.Variants[variant].ID, Quantity: qty}
}

func TestCreateOrderReservesStockAndPrices(t *testing.T) {
	db := newDB(t)
	p := addProduct(t, db, "classic", 1000, 5)
	svc := newOrderService(db, nil)

	o, err := svc.Create(context.Background(), checkout(line(p, 0, 2)))
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^LD\d{6}-\d{4}$`), o.OrderNumber)
	assert.Equal(t, domain.OrderNew, o.Status)
	assert.Equal(t, domain.PaymentCOD, o.PaymentMethod)
	assert.Equal(t, "nova_poshta", o.Shipping.Method)
	assert.Equal(t, "olena@example.com", o.Customer.Email)
	assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(2000)), o.Subtotal.String())
	assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(2070)), o.TotalPrice.String())
	require.Len(t, o.Items, 1)
	assert.Equal(t, p.Title, o.Items[0].Title)
	assert.Equal(t, "Колір 1", o.Items[0].Color)
	assert.Equal(t, 3, stockOf(t, db, p, 0))
}

func TestCreateOrderSnapshotSurvivesProductEdit(t *testing.T) {
	db := newDB(t)
	p := addProduct(t, db, "snapshot", 1500, 4)
	svc := newOrderService(db, nil)

	o, err := svc.Create(context.Background(), checkout(line(p, 0, 1)))
	require.NoError(t, err)

	p.Title = "Нова назва"
	p.Price = decimal.NewFromInt(9999)
	require.NoError(t, repos.NewProductRepo(db).Update(p))

	got, err := svc.Get(o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Сумка snapshot", got.Items[0].Title)
	assert.True(t, got.Items[0].Price.Equal(decimal.NewFromInt(1500)))
	assert.True(t, got.TotalPrice.Equal(decimal.NewFromInt(1570)))
	assert.Equal(t, o.OrderNumber, got.OrderNumber)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	db := newDB(t)
	p := addProduct(t, db, "scarce", 1000, 2)
	svc := newOrderService(db, nil)

	_, err := svc.Create(context.Background(), checkout(line(p, 0, 3)))
	var se *services.StockError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, services.ErrInsufficientStock)
	assert.Equal(t, "Insufficient stock for Сумка scarce", err.Error())
	assert.Equal(t, 2, stockOf(t, db, p, 0))

	orders, err := svc.List(repos.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderIsAllOrNothing(t *testing.T) {
	db := newDB(t)
	plenty := addProduct(t, db, "plenty", 500, 5)
	last := addProduct(t, db, "last-one", 800, 1)
	svc := newOrderService(db, nil)

	_, err := svc.Create(context.Background(), checkout(line(plenty, 0, 2), line(last, 0, 2)))
	require.ErrorIs(t, err, services.ErrInsufficientStock)
	assert.Equal(t, 5, stockOf(t, db, plenty, 0))
	assert.Equal(t, 1, stockOf(t, db, last, 0))
}

func TestCreateOrderSumsRepeatedVariant(t *testing.T) {
	db := newDB(t)
	p := addProduct(t, db, "repeat", 500, 3)
	svc := newOrderService(db, nil)

	_, err := svc.Create(context.Background(), checkout(line(p, 0, 2), line(p, 0, 2)))
	require.ErrorIs(t, err, services.ErrInsufficientStock)
	assert.Equal(t, 3, stockOf(t, db, p, 0))

	_, err = svc.Create(context.Background(), checkout(line(p, 0, 1), line(p, 0, 2)))
	require.NoError(t, err)
	assert.Equal(t, 0, stockOf(t, db, p, 0))
}

func TestCreateOrderUnknownOrDraftProduct(t *testing.T) {
	db := newDB(t)
	p := addProduct(t, db, "draft", 500, 3)
	svc := newOrderService(db, nil)

	_, err := svc.Create(context.Background(), checkout(services.OrderLine{ProductID: "nope", VariantID: "v", Quantity: 1}))
	var missing *services.MissingProductError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "nope", missing.ProductID)
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	p.Status = domain.StatusDraft
	require.NoError(t, repos.NewProductRepo(db).Update(p))
	_, err = svc.Create(context.Background(), checkout(line(p, 0, 1)))
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	_, err = svc.Create(context.Background(), checkout(services.OrderLine{ProductID: p.ID, VariantID: "missing", Quantity: 1}))
	assert.Error(t, err)
}

func TestCreateOrderValidation(t *testing.T) {
	db := newDB(t)
	p := addProduct(t, db, "valid", 500, 3)
	svc := newOrderService(db, nil)

	cases := map[string]func(*services.NewOrder){
		"no items":          func(in *services.NewOrder) { in.Items = nil },
		"zero quantity":     func(in *services.NewOrder) { in.Items[0].Quantity = 0 },
		"quantity over cap": func(in *services.NewOrder) { in.Items[0].Quantity = 51 },
		"too many lines": func(in *services.NewOrder) {
			for len(in.Items) <= 100 {
				in.Items = append(in.Items, in.Items[0])
			}
		},
		"bad email":         func(in *services.NewOrder) { in.Customer.Email = "not-an-email" },
		"no warehouse":      func(in *services.NewOrder) { in.Shipping.WarehouseRef = "" },
		"unknown payment":   func(in *services.NewOrder) { in.PaymentMethod = "barter" },
		"negative shipping": func(in *services.NewOrder) { in.ShippingCost = decimal.NewFromInt(-1) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := checkout(line(p, 0, 1))
			mutate(&in)
			_, err := svc.Create(context.Background(), in)
			var ie *services.InputError
			require.ErrorAs(t, err, &ie)
			assert.ErrorIs(t, err, services.ErrInvalidOrder)
		})
	}
	assert.Equal(t, 3, stockOf(t, db, p, 0))
}

func TestCreateOrderRejectsOverflowingQuantities(t *testing.T) {
	db := newDB(t)
	p := addProduct(t, db, "overflow", 700, 5)
	svc := newOrderService(db, nil)

	_, err := svc.Create(context.Background(), checkout(line(p, 0, 1), line(p, 0, math.MaxInt)))
	assert.ErrorIs(t, err, services.ErrInvalidOrder)

	assert.Equal(t, 5, stockOf(t, db, p, 0))
	got, err := repos.NewProductRepo(db).Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Variants[0].Stock)

	orders, err := repos.NewOrderRepo(db).List(repos.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestDecrementRejectsNonPositiveQuantity(t *testing.T) {
	db := newDB(t)
	p := addProduct(t, db, "decrement", 700, 5)
	inv := repos.NewInventoryRepo(db)

	for _, by := range []int{0, -1, math.MinInt} {
		err := repos.WithTx(db, func(tx *sqlx.Tx) error {
			return inv.Decrement(tx, p.ID, p.Variants[0].ID, by)
		})
		assert.Error(t, err, by)
	}
	assert.Equal(t, 5, stockOf(t, db, p, 0))
}

func TestCreateOrderRetriesTakenNumber(t *testing.T) {
	db := newDB(t)
	p := addProduct(t, db, "numbers", 500, 5)
	nums := &listNumbers{seq: []string{"LD250101-0001", "LD250101-0001", "LD250101-0002"}}
	svc := newOrderService(db, nums)

	first, err := svc.Create(context.Background(), checkout(line(p, 0, 1)))
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), checkout(line(p, 0, 1)))
	require.NoError(t, err)

	assert.Equal(t, "LD250101-0001", first.OrderNumber)
	assert.Equal(t, "LD250101-0002", second.OrderNumber)
	assert.Equal(t, 3, stockOf(t, db, p, 0))
}

func TestCreateOrderNumberCollision(t *testing.T) {
	db := newDB(t)
	p := addProduct(t, db, "collide", 500, 5)
	svc := newOrderService(db, &listNumbers{seq: []string{"LD250101-0001"}})

	_, err := svc.Create(context.Background(), checkout(line(p, 0, 1)))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), checkout(line(p, 0, 1)))
	require.ErrorIs(t, err, services.ErrOrderNumberCollision)
	assert.Equal(t, 4, stockOf(t, db, p, 0))
}

func TestCreateOrderLastUnitRace(t *testing.T) {
	db := newDB(t)
	p := addProduct(t, db, "race", 500, 1)
	svc := newOrderService(db, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), checkout(line(p, 0, 1)))
		}(i)
	}
	wg.Wait()

	ok, short := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, services.ErrInsufficientStock):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Equal(t, 0, stockOf(t, db, p, 0))
}

func TestOrderNumbersFormat(t *testing.T) {
	g := services.NewOrderNumbers("LD")
	g.Now = func() time.Time { return time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC) }
	g.Seed(7)
	for i := 0; i < 20; i++ {
		assert.Regexp(t, `^LD250307-\d{4}$`, g.Next())
	}
}

func TestTotalsMismatch(t *testing.T) {
	o := &domain.Order{Subtotal: decimal.NewFromInt(100), TotalPrice: decimal.NewFromInt(170)}
	sub, total := decimal.NewFromInt(100), decimal.RequireFromString("170.00")
	assert.False(t, services.TotalsMismatch(services.NewOrder{}, o))
	assert.False(t, services.TotalsMismatch(services.NewOrder{ClientSubtotal: &sub, ClientTotal: &total}, o))

	cheap := decimal.NewFromInt(1)
	assert.True(t, services.TotalsMismatch(services.NewOrder{ClientTotal: &cheap}, o))
}

func TestCanView(t *testing.T) {
	o := &domain.Order{UserID: "u1", Customer: domain.Customer{Email: "olena@example.com"}}
	assert.False(t, services.CanView(nil, o))
	assert.True(t, services.CanView(&domain.User{ID: "u1", Email: "other@example.com"}, o))
	assert.True(t, services.CanView(&domain.User{ID: "u2", Email: "OLENA@example.com"}, o))
	assert.False(t, services.CanView(&domain.User{ID: "u3", Email: "mallory@example.com"}, o))
	assert.True(t, services.CanView(&domain.User{ID: "a", Role: domain.RoleAdmin}, o))
}

func TestUpdateOrderStatus(t *testing.T) {
	db := newDB(t)
	p := addProduct(t, db, "status", 500, 5)
	svc := newOrderService(db, nil)
	o, err := svc.Create(context.Background(), checkout(line(p, 0, 1)))
	require.NoError(t, err)

	got, err := svc.UpdateStatus(o.ID, domain.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, got.Status)
	assert.True(t, got.TotalPrice.Equal(o.TotalPrice))

	_, err = svc.UpdateStatus(o.ID, "lost")
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	_, err = svc.UpdateStatus("missing", domain.OrderShipped)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestOrderReadsSurfaceCorruptColumns(t *testing.T) {
	db := newDB(t)
	p := addProduct(t, db, "corrupt", 700, 5)
	svc := newOrderService(db, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, checkout(line(p, 0, 1)))
	require.NoError(t, err)
	second, err := svc.Create(ctx, checkout(line(p, 0, 1)))
	require.NoError(t, err)

	_, err = db.Exec(`UPDATE orders SET customer_json = '{"email":' WHERE id = ?`, first.ID)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE orders SET shipping_json = 'null}' WHERE id = ?`, second.ID)
	require.NoError(t, err)

	_, err = svc.Get(first.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrNotFound)
	assert.Contains(t, err.Error(), "customer")

	_, err = svc.Get(second.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shipping")

	_, err = svc.List(repos.OrderFilter{})
	assert.Error(t, err)
}
