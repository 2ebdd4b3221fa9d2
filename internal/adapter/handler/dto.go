package handler

import (
	"time"

	"github.com/rl1809/pos-register/internal/core/domain"
)

// Wire shapes shared by the HTTP and gRPC transports. Amounts are strings
// rounded to cents; discount percentages are rendered as entered.

type ProductDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

type CartLineDTO struct {
	Index     int    `json:"index"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Category  string `json:"category"`
	Image     string `json:"image"`
}

type TotalsDTO struct {
	Subtotal        string `json:"subtotal"`
	DiscountPercent string `json:"discount_percent"`
	DiscountAmount  string `json:"discount_amount"`
	Total           string `json:"total"`
}

type CartViewDTO struct {
	Lines    []CartLineDTO `json:"lines"`
	Discount string        `json:"discount"`
	Totals   TotalsDTO     `json:"totals"`
}

type OrderDTO struct {
	ID         int64         `json:"id"`
	SessionID  string        `json:"session_id"`
	Items      []CartLineDTO `json:"items"`
	CustomerID string        `json:"customer_id,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	TotalsDTO
}

type CustomerDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ListProductsRequest struct {
	Category string `json:"category"`
}

type ListProductsResponse struct {
	Products []ProductDTO `json:"products"`
}

type ListCategoriesResponse struct {
	Categories []string `json:"categories"`
}

type AddItemRequest struct {
	ProductID int64 `json:"product_id"`
}

type RemoveItemRequest struct {
	Index int `json:"index"`
}

type SetDiscountRequest struct {
	Discount string `json:"discount"`
}

type CommitOrderRequest struct {
	Discount   *string `json:"discount,omitempty"`
	CustomerID string  `json:"customer_id,omitempty"`
	RequestID  string  `json:"request_id,omitempty"`
}

type GetOrderRequest struct {
	ID int64 `json:"id"`
}

type ListOrdersResponse struct {
	Orders []OrderDTO `json:"orders"`
}

type RegisterCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ListCustomersResponse struct {
	Customers []CustomerDTO `json:"customers"`
}

type Empty struct{}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toProductDTOs(products []domain.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, ProductDTO{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price.StringFixed(2),
			Category: p.Category,
			Image:    p.Image,
		})
	}
	return out
}

func toLineDTOs(lines []domain.CartLine) []CartLineDTO {
	out := make([]CartLineDTO, 0, len(lines))
	for i, l := range lines {
		out = append(out, CartLineDTO{
			Index:     i,
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price.StringFixed(2),
			Category:  l.Category,
			Image:     l.Image,
		})
	}
	return out
}

func toTotalsDTO(t domain.Totals) TotalsDTO {
	d := t.Display()
	return TotalsDTO{
		Subtotal:        d.Subtotal,
		DiscountPercent: d.DiscountPercent,
		DiscountAmount:  d.DiscountAmount,
		Total:           d.Total,
	}
}

func toCartViewDTO(v domain.CartView) *CartViewDTO {
	return &CartViewDTO{
		Lines:    toLineDTOs(v.Lines),
		Discount: v.Discount,
		Totals:   toTotalsDTO(v.Totals),
	}
}

func toOrderDTO(o domain.Order) OrderDTO {
	return OrderDTO{
		ID:         o.ID,
		SessionID:  o.SessionID,
		Items:      toLineDTOs(o.Items),
		CustomerID: o.CustomerID,
		CreatedAt:  o.CreatedAt,
		TotalsDTO: toTotalsDTO(domain.Totals{
			Subtotal:        o.Subtotal,
			DiscountPercent: o.DiscountPercent,
			DiscountAmount:  o.DiscountAmount,
			Total:           o.Total,
		}),
	}
}

func toOrderDTOs(orders []domain.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderDTO(o))
	}
	return out
}

func toCustomerDTO(c domain.Customer) CustomerDTO {
	return CustomerDTO{ID: c.ID, Name: c.Name, Email: c.Email}
}

func toCustomerDTOs(customers []domain.Customer) []CustomerDTO {
	out := make([]CustomerDTO, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerDTO(c))
	}
	return out
}
