package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/config"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/courier"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/notify"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/payment"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/repository"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.Shipment{},
		&models.TrackingUpdate{},
		&models.ReturnRequest{},
		&models.Review{},
		&models.Activity{},
		&models.SiteSettings{},
	))

	database.DB = db
	config.AppConfig = &config.Config{
		Defaults: config.DefaultsConfig{ActivityLogCap: 100, StoreName: "SS Handlooms"},
		Payment:  config.PaymentConfig{GatewayKeyID: "key_test", GatewaySecret: "secret_test"},
	}
	return db
}

func newStorefront(db *gorm.DB) *StorefrontHandler {
	return &StorefrontHandler{
		Notifier: notify.NewNotifier(map[string]notify.Sender{}),
		Store:    repository.NewGormStore(db, 100),
	}
}

func performJSON(r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func checkoutPayload(productID uint, qty int) map[string]interface{} {
	return map[string]interface{}{
		"customer_name":  "Asha Menon",
		"customer_email": "asha@example.com",
		"phone":          "9800000000",
		"address":        "12 Beach Road",
		"city":           "Kochi",
		"state":          "Kerala",
		"pincode":        "682001",
		"payment_method": "cod",
		"items": []map[string]interface{}{
			{"product_id": productID, "quantity": qty, "size": "M"},
		},
	}
}

func TestCheckoutComputesTotalsAndDeductsStock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	product := models.Product{Name: "Kasavu Saree", Price: 2499, Stock: 10, Status: models.ProductActive, WeightKg: 0.5}
	require.NoError(t, db.Create(&product).Error)

	r := gin.New()
	h := newStorefront(db)
	r.POST("/checkout", h.Checkout)

	w := performJSON(r, http.MethodPost, "/checkout", checkoutPayload(product.ID, 2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		OrderNo      string  `json:"order_no"`
		Subtotal     float64 `json:"subtotal"`
		ShippingCost float64 `json:"shipping_cost"`
		Total        float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 4998.0, resp.Subtotal)
	// dtdc to 682001: base 40, zone 0, 1kg rounds to no extra, COD 25.
	assert.Equal(t, 65.0, resp.ShippingCost)
	assert.Equal(t, 5063.0, resp.Total)
	assert.Regexp(t, `^ORD-\d+$`, resp.OrderNo)

	var updated models.Product
	require.NoError(t, db.First(&updated, product.ID).Error)
	assert.Equal(t, 8, updated.Stock)

	var order models.Order
	require.NoError(t, db.Preload("Items").Where("order_no = ?", resp.OrderNo).First(&order).Error)
	assert.Equal(t, models.OrderPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2499.0, order.Items[0].UnitPrice)

	var customer models.Customer
	require.NoError(t, db.Where("email = ?", "asha@example.com").First(&customer).Error)
	assert.Equal(t, 1, customer.OrderCount)
	assert.Equal(t, order.Total, customer.TotalSpent)
}

func TestCheckoutRejectsInsufficientStock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	product := models.Product{Name: "Mundu", Price: 899, Stock: 1, Status: models.ProductActive, WeightKg: 0.3}
	require.NoError(t, db.Create(&product).Error)

	r := gin.New()
	h := newStorefront(db)
	r.POST("/checkout", h.Checkout)

	w := performJSON(r, http.MethodPost, "/checkout", checkoutPayload(product.ID, 5))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Stock must be untouched after the rollback.
	var updated models.Product
	require.NoError(t, db.First(&updated, product.ID).Error)
	assert.Equal(t, 1, updated.Stock)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestCheckoutRejectsInactiveProduct(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	product := models.Product{Name: "Retired Stole", Price: 499, Stock: 5, Status: models.ProductInactive}
	require.NoError(t, db.Create(&product).Error)

	r := gin.New()
	h := newStorefront(db)
	r.POST("/checkout", h.Checkout)

	w := performJSON(r, http.MethodPost, "/checkout", checkoutPayload(product.ID, 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutPrepaidRequiresSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	product := models.Product{Name: "Kasavu Saree", Price: 2499, Stock: 10, Status: models.ProductActive}
	require.NoError(t, db.Create(&product).Error)

	r := gin.New()
	h := newStorefront(db)
	r.POST("/checkout", h.Checkout)

	payload := checkoutPayload(product.ID, 1)
	payload["payment_method"] = "prepaid"
	w := performJSON(r, http.MethodPost, "/checkout", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	payload["payment_order_id"] = "order_G8"
	payload["payment_id"] = "pay_abc"
	payload["payment_signature"] = "not-a-real-signature"
	w = performJSON(r, http.MethodPost, "/checkout", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Payment verification failed")
}

func TestCheckoutPrepaidAcceptsValidSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	product := models.Product{Name: "Kasavu Saree", Price: 2499, Stock: 10, Status: models.ProductActive, WeightKg: 0.5}
	require.NoError(t, db.Create(&product).Error)

	r := gin.New()
	h := newStorefront(db)
	r.POST("/checkout", h.Checkout)

	// The gateway signs its own order id + payment id; the client relays them.
	payload := checkoutPayload(product.ID, 1)
	payload["payment_method"] = "prepaid"
	payload["payment_order_id"] = "order_G8"
	payload["payment_id"] = "pay_abc"
	payload["payment_signature"] = payment.Signature("order_G8", "pay_abc", "secret_test")

	w := performJSON(r, http.MethodPost, "/checkout", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, db.Where("customer_email = ?", "asha@example.com").First(&order).Error)
	assert.Equal(t, models.PaymentPrepaid, order.PaymentMethod)
	assert.Equal(t, "order_G8", order.PaymentOrderID)
	assert.Equal(t, "pay_abc", order.PaymentID)
}

func TestCheckoutPersistsQuotedCarrier(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	// Subtotal 4998 stays under the high-value threshold even though the
	// grand total crosses it; the booked carrier must match the quote.
	product := models.Product{Name: "Kasavu Saree", Price: 2499, Stock: 10, Status: models.ProductActive, WeightKg: 0.5}
	require.NoError(t, db.Create(&product).Error)

	r := gin.New()
	h := newStorefront(db)
	r.POST("/checkout", h.Checkout)

	w := performJSON(r, http.MethodPost, "/checkout", checkoutPayload(product.ID, 2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, db.Preload("Items").Where("customer_email = ?", "asha@example.com").First(&order).Error)
	assert.Equal(t, courier.CarrierDTDC, order.Carrier)
	assert.Greater(t, order.Total, 5000.0)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 0.5, order.Items[0].WeightKg)
}

func TestListProductsHidesInactive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.Product{Name: "Active Saree", Price: 999, Status: models.ProductActive}).Error)
	require.NoError(t, db.Create(&models.Product{Name: "Hidden Saree", Price: 999, Status: models.ProductInactive}).Error)

	r := gin.New()
	h := newStorefront(db)
	r.GET("/products", h.ListProducts)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var products []models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Active Saree", products[0].Name)
}

func TestRequestReturnOnlyForDeliveredOrders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	customer := models.Customer{Name: "Asha", Email: "asha@example.com", Status: models.CustomerActive, JoinDate: time.Now()}
	require.NoError(t, db.Create(&customer).Error)

	shipped := models.Order{OrderNo: "ORD-100", CustomerID: customer.ID, CustomerEmail: customer.Email, CustomerName: customer.Name, Status: models.OrderShipped, Total: 1499}
	delivered := models.Order{OrderNo: "ORD-200", CustomerID: customer.ID, CustomerEmail: customer.Email, CustomerName: customer.Name, Status: models.OrderDelivered, Total: 2499}
	require.NoError(t, db.Create(&shipped).Error)
	require.NoError(t, db.Create(&delivered).Error)

	r := gin.New()
	h := newStorefront(db)
	r.POST("/returns", h.RequestReturn)

	body := func(orderNo string) map[string]interface{} {
		return map[string]interface{}{"order_no": orderNo, "email": customer.Email, "reason": "Colour mismatch"}
	}

	w := performJSON(r, http.MethodPost, "/returns", body("ORD-100"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(r, http.MethodPost, "/returns", body("ORD-200"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var ret models.ReturnRequest
	require.NoError(t, db.Where("order_id = ?", delivered.ID).First(&ret).Error)
	assert.Regexp(t, `^RET-\d+$`, ret.ReturnNo)
	assert.Equal(t, models.ReturnPending, ret.Status)
	assert.Equal(t, 2499.0, ret.Amount)

	// Second request for the same order conflicts.
	w = performJSON(r, http.MethodPost, "/returns", body("ORD-200"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTrackOrderByNumber(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	order := models.Order{OrderNo: "ORD-300", Status: models.OrderShipped, Total: 999}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&models.Shipment{
		ShipmentNo:     fmt.Sprintf("SHP-%d-%d", time.Now().UnixMilli(), order.ID),
		OrderID:        order.ID,
		TrackingNumber: "BD0000000001",
		Status:         models.ShipmentInTransit,
	}).Error)

	r := gin.New()
	h := newStorefront(db)
	r.GET("/orders/:order_no/track", h.TrackOrder)

	req := httptest.NewRequest(http.MethodGet, "/orders/ORD-300/track", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BD0000000001")

	req = httptest.NewRequest(http.MethodGet, "/orders/ORD-999/track", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
