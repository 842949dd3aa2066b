package orders

import (
	"strings"

	"oticas-backend/internal/database"
	"oticas-backend/internal/models"
	"oticas-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

type OrderResponse struct {
	ID            uint   `json:"id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	SellerID      *uint  `json:"seller"`
	SellerName    string `json:"seller_name,omitempty"`
	StoreID       uint   `json:"store"`
	StoreName     string `json:"store_name"`

	SphereRight   *float64 `json:"esferico_od"`
	CylinderRight *float64 `json:"cilindrico_od"`
	AxisRight     *int     `json:"eixo_od"`
	AdditionRight *float64 `json:"adicao_od"`
	DNPRight      *float64 `json:"dnp_od"`
	HeightRight   *float64 `json:"altura_od"`

	SphereLeft   *float64 `json:"esferico_oe"`
	CylinderLeft *float64 `json:"cilindrico_oe"`
	AxisLeft     *int     `json:"eixo_oe"`
	AdditionLeft *float64 `json:"adicao_oe"`
	DNPLeft      *float64 `json:"dnp_oe"`
	HeightLeft   *float64 `json:"altura_oe"`

	LensDescription  string  `json:"lens_description"`
	FrameDescription string  `json:"frame_description"`
	Notes            string  `json:"notes"`
	TotalPrice       float64 `json:"total_price"`

	Status    models.OrderStatus `json:"status"`
	CreatedAt string             `json:"created_at"`
}

type OrderRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	SellerID      *uint  `json:"seller"`
	StoreID       *uint  `json:"store"` // admin escolhe; gerente usa a própria loja

	SphereRight   *float64 `json:"esferico_od"`
	CylinderRight *float64 `json:"cilindrico_od"`
	AxisRight     *int     `json:"eixo_od"`
	AdditionRight *float64 `json:"adicao_od"`
	DNPRight      *float64 `json:"dnp_od"`
	HeightRight   *float64 `json:"altura_od"`

	SphereLeft   *float64 `json:"esferico_oe"`
	CylinderLeft *float64 `json:"cilindrico_oe"`
	AxisLeft     *int     `json:"eixo_oe"`
	AdditionLeft *float64 `json:"adicao_oe"`
	DNPLeft      *float64 `json:"dnp_oe"`
	HeightLeft   *float64 `json:"altura_oe"`

	LensDescription  string   `json:"lens_description"`
	FrameDescription string   `json:"frame_description"`
	Notes            string   `json:"notes"`
	TotalPrice       *float64 `json:"total_price"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

func validOrderStatus(s models.OrderStatus) bool {
	switch s {
	case models.OrderInProgress, models.OrderReady, models.OrderDelivered:
		return true
	}
	return false
}

func orderResponse(o *models.Order) OrderResponse {
	res := OrderResponse{
		ID:               o.ID,
		CustomerName:     o.CustomerName,
		CustomerPhone:    o.CustomerPhone,
		SellerID:         o.SellerID,
		StoreID:          o.StoreID,
		StoreName:        o.Store.Name,
		SphereRight:      o.SphereRight,
		CylinderRight:    o.CylinderRight,
		AxisRight:        o.AxisRight,
		AdditionRight:    o.AdditionRight,
		DNPRight:         o.DNPRight,
		HeightRight:      o.HeightRight,
		SphereLeft:       o.SphereLeft,
		CylinderLeft:     o.CylinderLeft,
		AxisLeft:         o.AxisLeft,
		AdditionLeft:     o.AdditionLeft,
		DNPLeft:          o.DNPLeft,
		HeightLeft:       o.HeightLeft,
		LensDescription:  o.LensDescription,
		FrameDescription: o.FrameDescription,
		Notes:            o.Notes,
		TotalPrice:       o.TotalPrice,
		Status:           o.Status,
		CreatedAt:        o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if o.Seller != nil {
		res.SellerName = o.Seller.Name
	}
	return res
}

// POST /api/orders
func CreateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body OrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.CustomerName = strings.TrimSpace(body.CustomerName)
		if body.CustomerName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "O nome do cliente não pode ficar vazio")
		}
		if body.TotalPrice != nil && *body.TotalPrice < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "O valor total não pode ser negativo")
		}

		storeID, err := store.ResolveScope(c, body.StoreID)
		if err != nil {
			return err
		}

		if body.SellerID != nil {
			var seller models.Seller
			if err := database.DB.First(&seller, "id = ? AND store_id = ?", *body.SellerID, storeID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Vendedor inválido para esta loja")
			}
		}

		order := models.Order{
			CustomerName:     body.CustomerName,
			CustomerPhone:    body.CustomerPhone,
			SellerID:         body.SellerID,
			StoreID:          storeID,
			SphereRight:      body.SphereRight,
			CylinderRight:    body.CylinderRight,
			AxisRight:        body.AxisRight,
			AdditionRight:    body.AdditionRight,
			DNPRight:         body.DNPRight,
			HeightRight:      body.HeightRight,
			SphereLeft:       body.SphereLeft,
			CylinderLeft:     body.CylinderLeft,
			AxisLeft:         body.AxisLeft,
			AdditionLeft:     body.AdditionLeft,
			DNPLeft:          body.DNPLeft,
			HeightLeft:       body.HeightLeft,
			LensDescription:  body.LensDescription,
			FrameDescription: body.FrameDescription,
			Notes:            body.Notes,
			Status:           models.OrderInProgress,
		}
		if body.TotalPrice != nil {
			order.TotalPrice = *body.TotalPrice
		}

		if err := database.DB.Create(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o pedido")
		}

		database.DB.Preload("Store").Preload("Seller").First(&order, order.ID)
		return c.Status(fiber.StatusCreated).JSON(orderResponse(&order))
	}
}

// GET /api/orders?status=pronto&customer_name=jo
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		storeID, err := store.ScopeFilter(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Order{}).
			Preload("Store").Preload("Seller").
			Order("created_at desc")
		if storeID != nil {
			dbq = dbq.Where("store_id = ?", *storeID)
		}

		if statusStr := c.Query("status"); statusStr != "" {
			status := models.OrderStatus(statusStr)
			if !validOrderStatus(status) {
				return fiber.NewError(fiber.StatusBadRequest, "status inválido (realizando|pronto|entregue)")
			}
			dbq = dbq.Where("status = ?", status)
		}
		if name := c.Query("customer_name"); name != "" {
			dbq = dbq.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(name)+"%")
		}

		var orders []models.Order
		if err := dbq.Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os pedidos")
		}

		res := make([]OrderResponse, 0, len(orders))
		for i := range orders {
			res = append(res, orderResponse(&orders[i]))
		}

		return c.JSON(res)
	}
}

// GET /api/orders/:id
func GetOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		storeID, err := store.ScopeFilter(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Preload("Store").Preload("Seller").Where("id = ?", id)
		if storeID != nil {
			dbq = dbq.Where("store_id = ?", *storeID)
		}

		var order models.Order
		if err := dbq.First(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Pedido não encontrado")
		}

		return c.JSON(orderResponse(&order))
	}
}

// PUT /api/orders/:id
func UpdateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		storeID, err := store.ScopeFilter(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Where("id = ?", id)
		if storeID != nil {
			dbq = dbq.Where("store_id = ?", *storeID)
		}

		var order models.Order
		if err := dbq.First(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Pedido não encontrado")
		}

		var body OrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.CustomerName = strings.TrimSpace(body.CustomerName)
		if body.CustomerName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "O nome do cliente não pode ficar vazio")
		}
		if body.TotalPrice != nil && *body.TotalPrice < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "O valor total não pode ser negativo")
		}

		if body.SellerID != nil {
			var seller models.Seller
			if err := database.DB.First(&seller, "id = ? AND store_id = ?", *body.SellerID, order.StoreID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Vendedor inválido para esta loja")
			}
		}

		order.CustomerName = body.CustomerName
		order.CustomerPhone = body.CustomerPhone
		order.SellerID = body.SellerID
		order.SphereRight = body.SphereRight
		order.CylinderRight = body.CylinderRight
		order.AxisRight = body.AxisRight
		order.AdditionRight = body.AdditionRight
		order.DNPRight = body.DNPRight
		order.HeightRight = body.HeightRight
		order.SphereLeft = body.SphereLeft
		order.CylinderLeft = body.CylinderLeft
		order.AxisLeft = body.AxisLeft
		order.AdditionLeft = body.AdditionLeft
		order.DNPLeft = body.DNPLeft
		order.HeightLeft = body.HeightLeft
		order.LensDescription = body.LensDescription
		order.FrameDescription = body.FrameDescription
		order.Notes = body.Notes
		if body.TotalPrice != nil {
			order.TotalPrice = *body.TotalPrice
		}

		if err := database.DB.Save(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o pedido")
		}

		database.DB.Preload("Store").Preload("Seller").First(&order, order.ID)
		return c.JSON(orderResponse(&order))
	}
}

// PATCH /api/orders/:id/status
func UpdateOrderStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		storeID, err := store.ScopeFilter(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Where("id = ?", id)
		if storeID != nil {
			dbq = dbq.Where("store_id = ?", *storeID)
		}

		var order models.Order
		if err := dbq.First(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Pedido não encontrado")
		}

		var body UpdateOrderStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}
		if !validOrderStatus(body.Status) {
			return fiber.NewError(fiber.StatusBadRequest, "status inválido (realizando|pronto|entregue)")
		}

		order.Status = body.Status
		if err := database.DB.Save(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o status do pedido")
		}

		database.DB.Preload("Store").Preload("Seller").First(&order, order.ID)
		return c.JSON(orderResponse(&order))
	}
}

// DELETE /api/orders/:id (apenas admin)
func DeleteOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var order models.Order
		if err := database.DB.First(&order, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Pedido não encontrado")
		}

		// Pedido entregue faz parte do histórico e não pode ser removido
		if order.Status == models.OrderDelivered {
			return fiber.NewError(fiber.StatusBadRequest, "Não é possível excluir um pedido já entregue")
		}

		if err := database.DB.Delete(&order).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir o pedido")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
