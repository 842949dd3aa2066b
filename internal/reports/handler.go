package reports

import (
	"time"

	"oticas-backend/internal/auth"
	"oticas-backend/internal/database"
	"oticas-backend/internal/models"
	"oticas-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DashboardResponse struct {
	SalesToday       int64   `json:"sales_today"`
	RevenueToday     float64 `json:"revenue_today"`
	SalesMonth       int64   `json:"sales_month"`
	RevenueMonth     float64 `json:"revenue_month"`
	LowStockCount    int64   `json:"low_stock_count"`
	OutOfStockCount  int64   `json:"out_of_stock_count"`
	OrdersInProgress int64   `json:"orders_in_progress"`
	TotalStores      *int64  `json:"total_stores,omitempty"` // apenas admin
}

func periodRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	// Exclusivo: amanhã à meia-noite, para incluir o dia de hoje por inteiro
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)

	if fromStr := c.Query("start_date"); fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, "start_date inválida, use 'YYYY-MM-DD'")
		}
		from = parsed
	}
	if toStr := c.Query("end_date"); toStr != "" {
		parsed, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, "end_date inválida, use 'YYYY-MM-DD'")
		}
		to = parsed.AddDate(0, 0, 1)
	}
	return from, to, nil
}

// GET /api/reports/dashboard
func DashboardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		storeID, err := store.ScopeFilter(c)
		if err != nil {
			return err
		}

		scoped := func(q *gorm.DB, column string) *gorm.DB {
			if storeID != nil {
				return q.Where(column+" = ?", *storeID)
			}
			return q
		}

		now := time.Now()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

		var res DashboardResponse

		scoped(database.DB.Model(&models.Sale{}), "store_id").
			Where("sale_date >= ?", startOfDay).Count(&res.SalesToday)
		scoped(database.DB.Model(&models.Sale{}), "store_id").
			Where("sale_date >= ?", startOfDay).
			Select("COALESCE(SUM(total_amount), 0)").Scan(&res.RevenueToday)

		scoped(database.DB.Model(&models.Sale{}), "store_id").
			Where("sale_date >= ?", startOfMonth).Count(&res.SalesMonth)
		scoped(database.DB.Model(&models.Sale{}), "store_id").
			Where("sale_date >= ?", startOfMonth).
			Select("COALESCE(SUM(total_amount), 0)").Scan(&res.RevenueMonth)

		scoped(database.DB.Model(&models.StoreProduct{}), "store_id").
			Where("quantity > 0 AND quantity < 5").Count(&res.LowStockCount)
		scoped(database.DB.Model(&models.StoreProduct{}), "store_id").
			Where("quantity = 0").Count(&res.OutOfStockCount)

		scoped(database.DB.Model(&models.Order{}), "store_id").
			Where("status = ?", models.OrderInProgress).Count(&res.OrdersInProgress)

		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		if role == models.RoleAdmin {
			var totalStores int64
			database.DB.Model(&models.Store{}).Count(&totalStores)
			res.TotalStores = &totalStores
		}

		return c.JSON(res)
	}
}

type StoreSalesRow struct {
	StoreID    uint    `json:"store"`
	StoreName  string  `json:"store_name"`
	SalesCount int64   `json:"sales_count"`
	Revenue    float64 `json:"revenue"`
}

type SalesReportResponse struct {
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	SalesCount int64           `json:"sales_count"`
	Revenue    float64         `json:"revenue"`
	ByStore    []StoreSalesRow `json:"by_store,omitempty"` // admin sem filtro de loja
}

// GET /api/reports/sales?start_date=2026-08-01&end_date=2026-08-31&store=1
// Admin sem filtro de loja recebe o consolidado quebrado por loja.
func SalesReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		storeID, err := store.ScopeFilter(c)
		if err != nil {
			return err
		}

		from, to, err := periodRange(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Sale{}).
			Where("sale_date >= ? AND sale_date < ?", from, to)
		if storeID != nil {
			dbq = dbq.Where("store_id = ?", *storeID)
		}

		res := SalesReportResponse{
			StartDate: from.Format("2006-01-02"),
			EndDate:   to.AddDate(0, 0, -1).Format("2006-01-02"),
		}
		dbq.Session(&gorm.Session{}).Count(&res.SalesCount)
		dbq.Session(&gorm.Session{}).Select("COALESCE(SUM(total_amount), 0)").Scan(&res.Revenue)

		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
		if role == models.RoleAdmin && storeID == nil {
			var rows []StoreSalesRow
			database.DB.Model(&models.Sale{}).
				Select("sales.store_id as store_id, stores.name as store_name, COUNT(sales.id) as sales_count, COALESCE(SUM(sales.total_amount), 0) as revenue").
				Joins("JOIN stores ON stores.id = sales.store_id").
				Where("sales.sale_date >= ? AND sales.sale_date < ?", from, to).
				Group("sales.store_id, stores.name").
				Order("revenue desc").
				Scan(&rows)
			res.ByStore = rows
		}

		return c.JSON(res)
	}
}

type ProductSalesRow struct {
	ProductID   uint    `json:"product"`
	ProductName string  `json:"product_name"`
	Quantity    int64   `json:"quantity"`
	Revenue     float64 `json:"revenue"`
}

type ProductsReportResponse struct {
	StartDate    string            `json:"start_date"`
	EndDate      string            `json:"end_date"`
	TopSellers   []ProductSalesRow `json:"top_sellers"`
	LeastSellers []ProductSalesRow `json:"least_sellers"`
}

// GET /api/reports/products?start_date=2026-08-01&end_date=2026-08-31&store=1
// Cinco produtos mais vendidos e cinco menos vendidos por quantidade no período.
func ProductsReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		storeID, err := store.ScopeFilter(c)
		if err != nil {
			return err
		}

		from, to, err := periodRange(c)
		if err != nil {
			return err
		}

		base := func() *gorm.DB {
			q := database.DB.Model(&models.SaleItem{}).
				Select("sale_items.product_id as product_id, products.name as product_name, COALESCE(SUM(sale_items.quantity), 0) as quantity, COALESCE(SUM(sale_items.total_price), 0) as revenue").
				Joins("JOIN sales ON sales.id = sale_items.sale_id").
				Joins("JOIN products ON products.id = sale_items.product_id").
				Where("sales.sale_date >= ? AND sales.sale_date < ?", from, to).
				Group("sale_items.product_id, products.name")
			if storeID != nil {
				q = q.Where("sales.store_id = ?", *storeID)
			}
			return q
		}

		res := ProductsReportResponse{
			StartDate: from.Format("2006-01-02"),
			EndDate:   to.AddDate(0, 0, -1).Format("2006-01-02"),
		}
		base().Order("quantity desc").Limit(5).Scan(&res.TopSellers)
		base().Order("quantity asc").Limit(5).Scan(&res.LeastSellers)

		return c.JSON(res)
	}
}
