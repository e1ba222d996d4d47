package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ikkim/cart-backend/internal/app/model"
	"github.com/ikkim/cart-backend/internal/app/service"
	apperrors "github.com/ikkim/cart-backend/internal/errors"
	"github.com/ikkim/cart-backend/internal/middleware"
)

const defaultAddQuantity = 1

type CartController struct {
	cartService  service.CartService
	strictStatus bool
}

// NewCartController builds the cart handlers. With strictStatus false every
// error is answered with 404, matching the long-standing API contract.
func NewCartController(cartService service.CartService, strictStatus bool) *CartController {
	return &CartController{
		cartService:  cartService,
		strictStatus: strictStatus,
	}
}

// QuantityValue decodes a JSON integer or a numeric string such as "3".
// Decoding rejects fractions and values above service.MaxLineItemQuantity;
// positivity is checked by the binding tags.
type QuantityValue int

func (q *QuantityValue) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return apperrors.Newf(apperrors.KindInvalidQuantity, "invalid quantity %s: must be a positive integer", data)
	}
	if n == "" {
		return nil
	}
	v, err := n.Int64()
	if err != nil || v > service.MaxLineItemQuantity {
		return apperrors.Newf(apperrors.KindInvalidQuantity, "invalid quantity %s: must be a positive integer up to %d", n, service.MaxLineItemQuantity)
	}
	*q = QuantityValue(v)
	return nil
}

type UpdateQuantityRequest struct {
	Quantity QuantityValue `json:"quantity" binding:"required,gt=0"`
}

type LineItemRequest struct {
	Product  string         `json:"product" binding:"required"`
	Quantity *QuantityValue `json:"quantity" binding:"omitempty,gt=0"`
}

// CreateCart creates an empty cart
// POST /carts
func (ctrl *CartController) CreateCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	cart, err := ctrl.cartService.CreateCart(c.Request.Context())
	if err != nil {
		ctrl.respondError(c, err, nil)
		return
	}

	log.Info("Cart created successfully", map[string]interface{}{
		"cart_id": cart.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Cart created successfully",
		"cart":    cart,
	})
}

// GetCart returns the cart's line items
// GET /carts/:cid
func (ctrl *CartController) GetCart(c *gin.Context) {
	cartID := c.Param("cid")

	cart, err := ctrl.cartService.GetCart(c.Request.Context(), cartID)
	if err != nil {
		ctrl.respondError(c, err, map[string]interface{}{"cart_id": cartID})
		return
	}

	c.JSON(http.StatusOK, cart.Products)
}

// AddProduct merges quantity into the cart, appending the product if absent
// GET /carts/:cid/product/:pid?quantity=N
func (ctrl *CartController) AddProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	cartID := c.Param("cid")
	productID := c.Param("pid")
	quantity, ok := parseAddQuantity(c.Query("quantity"))
	if !ok {
		ctrl.respondError(c, apperrors.Newf(apperrors.KindInvalidQuantity, "quantity %s exceeds %d", c.Query("quantity"), service.MaxLineItemQuantity), map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		return
	}

	cart, action, err := ctrl.cartService.AddProduct(c.Request.Context(), cartID, productID, quantity)
	if err != nil {
		ctrl.respondError(c, err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		return
	}

	log.Info("Product added to cart", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
		"quantity":   quantity,
		"action":     action.String(),
	})

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  fmt.Sprintf("Cart %s - Product: %s", cart.ID, productID),
		"action":   action,
		"products": cart.Products,
	})
}

// SetProductQuantity overwrites the quantity of a product already in the cart
// PUT /carts/:cid/products/:pid
func (ctrl *CartController) SetProductQuantity(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	cartID := c.Param("cid")
	productID := c.Param("pid")

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.respondError(c, bindingError(err, "invalid request body"), map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		return
	}
	quantity := int(req.Quantity)

	cart, action, err := ctrl.cartService.SetProductQuantity(c.Request.Context(), cartID, productID, quantity)
	if err != nil {
		ctrl.respondError(c, err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		return
	}

	log.Info("Cart product quantity set", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
		"quantity":   quantity,
		"action":     action.String(),
	})

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  fmt.Sprintf("Cart %s - Product: %s", cart.ID, productID),
		"action":   action,
		"products": cart.Products,
	})
}

// AppendProducts appends every line item in the body to the cart
// PUT /carts/:cid
func (ctrl *CartController) AppendProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	cartID := c.Param("cid")

	var req []LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.respondError(c, bindingError(err, "request body must be an array of line items"), map[string]interface{}{
			"cart_id": cartID,
		})
		return
	}

	items := make([]model.LineItem, len(req))
	for i, r := range req {
		quantity := defaultAddQuantity
		if r.Quantity != nil {
			quantity = int(*r.Quantity)
		}
		items[i] = model.LineItem{ProductID: strings.TrimSpace(r.Product), Quantity: quantity}
	}

	cart, err := ctrl.cartService.AppendProducts(c.Request.Context(), cartID, items)
	if err != nil {
		ctrl.respondError(c, err, map[string]interface{}{
			"cart_id": cartID,
			"count":   len(items),
		})
		return
	}

	log.Info("Cart products appended", map[string]interface{}{
		"cart_id": cartID,
		"count":   len(items),
	})

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  fmt.Sprintf("Cart %s updated", cart.ID),
		"products": cart.Products,
	})
}

// RemoveProduct removes a product from the cart
// DELETE /carts/:cid/products/:pid
func (ctrl *CartController) RemoveProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	cartID := c.Param("cid")
	productID := c.Param("pid")

	cart, err := ctrl.cartService.RemoveProduct(c.Request.Context(), cartID, productID)
	if err != nil {
		ctrl.respondError(c, err, map[string]interface{}{
			"cart_id":    cartID,
			"product_id": productID,
		})
		return
	}

	log.Info("Product removed from cart", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
	})

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  "Product removed successfully",
		"products": cart.Products,
	})
}

// ClearProducts removes every product but keeps the cart
// DELETE /carts/:cid
func (ctrl *CartController) ClearProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	cartID := c.Param("cid")

	cart, err := ctrl.cartService.ClearProducts(c.Request.Context(), cartID)
	if err != nil {
		ctrl.respondError(c, err, map[string]interface{}{"cart_id": cartID})
		return
	}

	log.Info("Cart cleared", map[string]interface{}{
		"cart_id": cartID,
	})

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  "Products removed successfully",
		"products": cart.Products,
	})
}

// GetStats reports cart and line item totals
// GET /stats/carts
func (ctrl *CartController) GetStats(c *gin.Context) {
	stats, err := ctrl.cartService.Stats(c.Request.Context())
	if err != nil {
		ctrl.respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Cart statistics",
		"stats":   stats,
	})
}

func (ctrl *CartController) respondError(c *gin.Context, err error, fields map[string]interface{}) {
	log := middleware.GetLoggerFromContext(c)
	if fields == nil {
		fields = map[string]interface{}{}
	}
	kind := apperrors.KindOf(err)
	fields["kind"] = kind.String()

	switch kind {
	case apperrors.KindPersistenceFailure, apperrors.KindUnknown:
		log.Error("Cart request failed", err, fields)
	default:
		fields["error"] = err.Error()
		log.Warn("Cart request rejected", fields)
	}

	apperrors.Respond(c, err, ctrl.strictStatus)
}

// bindingError maps a bind failure to an error kind. Validation failures on
// a quantity field are InvalidQuantity, everything else is InvalidInput.
func bindingError(err error, message string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return fieldError(fieldErrs, err)
	}

	var sliceErrs binding.SliceValidationError
	if errors.As(err, &sliceErrs) {
		for i, itemErr := range sliceErrs {
			if errors.As(itemErr, &fieldErrs) {
				itemAppErr := fieldError(fieldErrs, itemErr)
				return apperrors.Wrap(itemAppErr.Kind, itemErr, fmt.Sprintf("item %d: %s", i, itemAppErr.PublicMessage()))
			}
		}
	}

	return apperrors.Wrap(apperrors.KindInvalidInput, err, message)
}

func fieldError(fieldErrs validator.ValidationErrors, err error) *apperrors.Error {
	for _, fe := range fieldErrs {
		if fe.StructField() == "Quantity" {
			return apperrors.Wrap(apperrors.KindInvalidQuantity, err, "quantity must be a positive integer")
		}
	}
	return apperrors.Wrap(apperrors.KindInvalidInput, err, fmt.Sprintf("%s is %s", strings.ToLower(fieldErrs[0].Field()), fieldErrs[0].Tag()))
}

// parseAddQuantity reads the leading integer of raw, so "3abc" is 3 and
// "2.5" is 2. A missing, non-numeric or non-positive value falls back to 1.
// ok is false when the number is larger than a line item can hold.
func parseAddQuantity(raw string) (int, bool) {
	s := strings.TrimSpace(raw)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return defaultAddQuantity, true
	}

	n, err := strconv.Atoi(s[:end])
	switch {
	case errors.Is(err, strconv.ErrRange):
		if s[0] == '-' {
			return defaultAddQuantity, true
		}
		return 0, false
	case err != nil, n < 1:
		return defaultAddQuantity, true
	case n > service.MaxLineItemQuantity:
		return 0, false
	}
	return n, true
}
