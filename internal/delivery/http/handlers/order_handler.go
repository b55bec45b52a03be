package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/coursedesk/payment-order-service/internal/domain"
	"github.com/coursedesk/payment-order-service/internal/usecase"
	orderdto "github.com/coursedesk/payment-order-service/internal/usecase/dto/order"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	OrderUsecase     usecase.OrderUsecase
	ReconcileUsecase usecase.ReconcileUsecase
}

func NewOrderHandler(orderUsecase usecase.OrderUsecase, reconcileUsecase usecase.ReconcileUsecase) *OrderHandler {
	return &OrderHandler{
		OrderUsecase:     orderUsecase,
		ReconcileUsecase: reconcileUsecase,
	}
}

type createOrderRequest struct {
	MerchantOrderID string `json:"merchant_order_id" binding:"required"`
	Amount          int64  `json:"amount" binding:"required,gt=0"`
	CustomerName    string `json:"customer_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	CourseReference string `json:"course_reference"`
	ReturnURL       string `json:"return_url"`
}

type createOrderResponse struct {
	MerchantOrderID  string `json:"merchant_order_id"`
	PaymentSessionID string `json:"payment_session_id"`
	PaymentURL       string `json:"payment_url,omitempty"`
	Vendor           string `json:"vendor"`
}

type orderResponse struct {
	MerchantOrderID string     `json:"merchant_order_id"`
	Status          string     `json:"status"`
	Amount          int64      `json:"amount"`
	OrderNumber     string     `json:"order_number,omitempty"`
	TransactionTime *time.Time `json:"transaction_time,omitempty"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	output, err := h.OrderUsecase.CreateOrder(c.Request.Context(), &orderdto.CreateOrderInput{
		MerchantOrderID: req.MerchantOrderID,
		Amount:          req.Amount,
		CustomerName:    req.CustomerName,
		Email:           req.Email,
		Phone:           req.Phone,
		CourseReference: req.CourseReference,
		ReturnURL:       req.ReturnURL,
	})
	if err != nil {
		if errors.Is(err, domain.ErrGatewayUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, createOrderResponse{
		MerchantOrderID:  output.MerchantOrderID,
		PaymentSessionID: output.PaymentSessionID,
		PaymentURL:       output.PaymentURL,
		Vendor:           output.Vendor,
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.OrderUsecase.GetOrder(c.Request.Context(), c.Param("merchantOrderID"))
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) Reconcile(c *gin.Context) {
	order, err := h.ReconcileUsecase.Reconcile(c.Request.Context(), c.Param("merchantOrderID"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrGatewayUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func toOrderResponse(order *domain.Order) orderResponse {
	return orderResponse{
		MerchantOrderID: order.MerchantOrderID,
		Status:          string(order.Status),
		Amount:          order.Amount,
		OrderNumber:     order.OrderNumber,
		TransactionTime: order.TransactionTime,
	}
}
