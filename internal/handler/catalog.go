package handler

import (
	"fmt"
	"net/http"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/repository"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CatalogHandler covers back-office product and category management.
type CatalogHandler struct {
	Store repository.Store
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var products []models.Product
	query := database.DB.Preload("Category")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	CategoryID  *uint    `json:"category_id"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Sizes       []string `json:"sizes"`
	Stock       int      `json:"stock" binding:"gte=0"`
	ImageURL    string   `json:"image_url"`
	WeightKg    float64  `json:"weight_kg"`
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := models.Product{
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Price:       req.Price,
		Sizes:       req.Sizes,
		Stock:       req.Stock,
		Status:      models.ProductActive,
		ImageURL:    req.ImageURL,
		WeightKg:    req.WeightKg,
	}
	if product.WeightKg == 0 {
		product.WeightKg = 0.5
	}

	if err := database.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	h.Store.AppendActivity(&models.Activity{
		Type:    models.ActivityCatalog,
		Action:  "product_created",
		Details: fmt.Sprintf("Product %s added to catalog", product.Name),
	})
	c.JSON(http.StatusCreated, product)
}

type UpdateProductRequest struct {
	Name        string   `json:"name"`
	CategoryID  *uint    `json:"category_id"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Sizes       []string `json:"sizes"`
	Status      string   `json:"status"`
	ImageURL    string   `json:"image_url"`
	WeightKg    float64  `json:"weight_kg"`
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id := c.Param("id")
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.CategoryID != nil {
		updates["category_id"] = req.CategoryID
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Price > 0 {
		updates["price"] = req.Price
	}
	if req.Sizes != nil {
		updates["sizes"] = req.Sizes
	}
	if req.Status == models.ProductActive || req.Status == models.ProductInactive {
		updates["status"] = req.Status
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}
	if req.WeightKg > 0 {
		updates["weight_kg"] = req.WeightKg
	}

	if err := database.DB.Model(&product).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err := database.DB.Delete(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	h.Store.AppendActivity(&models.Activity{
		Type:    models.ActivityCatalog,
		Action:  "product_deleted",
		Details: fmt.Sprintf("Product %s removed from catalog", product.Name),
	})
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

type AdjustStockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// AdjustStock adds (or with a negative quantity, removes) stock. Stock can
// never be driven below zero.
func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	id := c.Param("id")
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := database.DB.Model(&models.Product{}).
		Where("id = ? AND stock + ? >= 0", id, req.Quantity).
		Update("stock", gorm.Expr("stock + ?", req.Quantity))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust stock"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Adjustment would make stock negative"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock adjusted"})
}

func (h *CatalogHandler) GetLowStockAlerts(c *gin.Context) {
	var products []models.Product
	if err := database.DB.Preload("Category").
		Where("stock <= ? AND status = ?", 5, models.ProductActive).
		Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alerts"})
		return
	}
	c.JSON(http.StatusOK, products)
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := database.DB.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := database.DB.Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id := c.Param("id")

	var count int64
	database.DB.Model(&models.Product{}).Where("category_id = ?", id).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category still has products"})
		return
	}

	if err := database.DB.Delete(&models.Category{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
