package main

import (
	"log"
	"strings"

	"oticas-backend/internal/audit"
	"oticas-backend/internal/auth"
	"oticas-backend/internal/cashtill"
	"oticas-backend/internal/catalog"
	"oticas-backend/internal/config"
	"oticas-backend/internal/customers"
	"oticas-backend/internal/database"
	"oticas-backend/internal/financial"
	"oticas-backend/internal/models"
	"oticas-backend/internal/orders"
	"oticas-backend/internal/reports"
	"oticas-backend/internal/sales"
	"oticas-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Erro inesperado no servidor",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Público
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Autenticado
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	adminOnly := auth.RequireRole(models.RoleAdmin)

	// Lojas
	protected.Post("/stores", adminOnly, store.CreateStoreHandler())
	protected.Get("/stores", store.ListStoresHandler())
	protected.Get("/stores/:id", store.GetStoreHandler())
	protected.Put("/stores/:id", adminOnly, store.UpdateStoreHandler())
	protected.Delete("/stores/:id", adminOnly, store.DeleteStoreHandler())

	// Usuários
	protected.Post("/users", adminOnly, store.CreateUserHandler())
	protected.Get("/users", adminOnly, store.ListUsersHandler())
	protected.Get("/users/:id", adminOnly, store.GetUserHandler())
	protected.Put("/users/:id", adminOnly, store.UpdateUserHandler())
	protected.Delete("/users/:id", adminOnly, store.DeleteUserHandler())

	// Categorias
	protected.Post("/categories", adminOnly, catalog.CreateCategoryHandler())
	protected.Get("/categories", catalog.ListCategoriesHandler())
	protected.Put("/categories/:id", adminOnly, catalog.UpdateCategoryHandler())
	protected.Delete("/categories/:id", adminOnly, catalog.DeleteCategoryHandler())

	// Produtos
	protected.Post("/products", catalog.CreateProductHandler())
	protected.Get("/products", catalog.ListProductsHandler())
	protected.Get("/products/:id", catalog.GetProductHandler())
	protected.Put("/products/:id", catalog.UpdateProductHandler())
	protected.Delete("/products/:id", adminOnly, catalog.DeleteProductHandler())

	// Estoque por loja
	protected.Get("/store-products", catalog.ListStoreProductsHandler())
	protected.Post("/store-products", catalog.UpsertStockHandler())
	protected.Get("/stock-movements", catalog.ListStockMovementsHandler())

	// Caixa
	protected.Get("/cash-till-sessions/status", cashtill.StatusHandler())
	protected.Post("/cash-till-sessions/open", cashtill.OpenHandler())
	protected.Post("/cash-till-sessions/:id/close", cashtill.CloseHandler())
	protected.Get("/cash-till-sessions", cashtill.ListHandler())
	protected.Get("/cash-till-sessions/:id", cashtill.GetHandler())

	// Vendas
	protected.Post("/sales", sales.CreateSaleHandler())
	protected.Get("/sales", sales.ListSalesHandler())
	protected.Get("/sales/:id", sales.GetSaleHandler())
	protected.Get("/cash-flows", sales.ListCashFlowsHandler())

	// Vendedores
	protected.Post("/sellers", sales.CreateSellerHandler())
	protected.Get("/sellers", sales.ListSellersHandler())
	protected.Put("/sellers/:id", sales.UpdateSellerHandler())
	protected.Delete("/sellers/:id", sales.DeleteSellerHandler())

	// Clientes
	protected.Post("/customers", customers.CreateCustomerHandler())
	protected.Get("/customers", customers.ListCustomersHandler())
	protected.Get("/customers/:id", customers.GetCustomerHandler())
	protected.Put("/customers/:id", customers.UpdateCustomerHandler())
	protected.Delete("/customers/:id", adminOnly, customers.DeleteCustomerHandler())

	// Pedidos
	protected.Post("/orders", orders.CreateOrderHandler())
	protected.Get("/orders", orders.ListOrdersHandler())
	protected.Get("/orders/:id", orders.GetOrderHandler())
	protected.Put("/orders/:id", orders.UpdateOrderHandler())
	protected.Patch("/orders/:id/status", orders.UpdateOrderStatusHandler())
	protected.Delete("/orders/:id", adminOnly, orders.DeleteOrderHandler())

	// Financeiro (apenas admin)
	financialRoutes := protected.Group("/financial")
	financialRoutes.Use(adminOnly)

	financialRoutes.Post("/suppliers", financial.CreateSupplierHandler())
	financialRoutes.Get("/suppliers", financial.ListSuppliersHandler())
	financialRoutes.Put("/suppliers/:id", financial.UpdateSupplierHandler())
	financialRoutes.Delete("/suppliers/:id", financial.DeleteSupplierHandler())

	financialRoutes.Post("/employees", financial.CreateEmployeeHandler())
	financialRoutes.Get("/employees", financial.ListEmployeesHandler())
	financialRoutes.Get("/employees/:id", financial.GetEmployeeHandler())
	financialRoutes.Put("/employees/:id", financial.UpdateEmployeeHandler())
	financialRoutes.Delete("/employees/:id", financial.DeleteEmployeeHandler())

	financialRoutes.Post("/payables", financial.CreatePayableHandler())
	financialRoutes.Get("/payables", financial.ListPayablesHandler())
	financialRoutes.Post("/payables/:id/pay", financial.PayPayableHandler())
	financialRoutes.Delete("/payables/:id", financial.CancelPayableHandler())

	financialRoutes.Post("/receivables", financial.CreateReceivableHandler())
	financialRoutes.Get("/receivables", financial.ListReceivablesHandler())
	financialRoutes.Post("/receivables/:id/receive", financial.ReceiveReceivableHandler())
	financialRoutes.Delete("/receivables/:id", financial.CancelReceivableHandler())

	financialRoutes.Post("/payrolls", financial.CreatePayrollHandler())
	financialRoutes.Get("/payrolls", financial.ListPayrollsHandler())
	financialRoutes.Put("/payrolls/:id", financial.UpdatePayrollHandler())
	financialRoutes.Post("/payrolls/:id/pay", financial.PayPayrollHandler())
	financialRoutes.Delete("/payrolls/:id", financial.DeletePayrollHandler())

	// Relatórios
	protected.Get("/reports/dashboard", reports.DashboardHandler())
	protected.Get("/reports/sales", reports.SalesReportHandler())
	protected.Get("/reports/products", reports.ProductsReportHandler())

	// Auditoria
	protected.Get("/audit-logs", adminOnly, audit.ListAuditLogsHandler())

	log.Println("Servidor rodando na porta:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
