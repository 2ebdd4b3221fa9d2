package handler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"github.com/rl1809/pos-register/internal/core/service"
)

const (
	RegisterServiceName = "pos.v1.RegisterService"
	jsonCodecName       = "json"
)

// jsonCodec carries the handler DTOs as JSON. Clients select it with
// grpc.CallContentSubtype(jsonCodecName), which RegisterClient does.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return jsonCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// RegisterServer is the server API for pos.v1.RegisterService.
type RegisterServer interface {
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	ListCategories(context.Context, *Empty) (*ListCategoriesResponse, error)
	GetCart(context.Context, *Empty) (*CartViewDTO, error)
	AddItem(context.Context, *AddItemRequest) (*CartViewDTO, error)
	RemoveItem(context.Context, *RemoveItemRequest) (*CartViewDTO, error)
	ClearCart(context.Context, *Empty) (*CartViewDTO, error)
	SetDiscount(context.Context, *SetDiscountRequest) (*CartViewDTO, error)
	CommitOrder(context.Context, *CommitOrderRequest) (*OrderDTO, error)
	ListOrders(context.Context, *Empty) (*ListOrdersResponse, error)
	GetOrder(context.Context, *GetOrderRequest) (*OrderDTO, error)
	RegisterCustomer(context.Context, *RegisterCustomerRequest) (*CustomerDTO, error)
	ListCustomers(context.Context, *Empty) (*ListCustomersResponse, error)
}

func unaryMethod[Req any](name string, call func(RegisterServer, context.Context, *Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(RegisterServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + RegisterServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(RegisterServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var registerServiceDesc = grpc.ServiceDesc{
	ServiceName: RegisterServiceName,
	HandlerType: (*RegisterServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ListProducts", func(s RegisterServer, ctx context.Context, in *ListProductsRequest) (any, error) {
			return s.ListProducts(ctx, in)
		}),
		unaryMethod("ListCategories", func(s RegisterServer, ctx context.Context, in *Empty) (any, error) {
			return s.ListCategories(ctx, in)
		}),
		unaryMethod("GetCart", func(s RegisterServer, ctx context.Context, in *Empty) (any, error) {
			return s.GetCart(ctx, in)
		}),
		unaryMethod("AddItem", func(s RegisterServer, ctx context.Context, in *AddItemRequest) (any, error) {
			return s.AddItem(ctx, in)
		}),
		unaryMethod("RemoveItem", func(s RegisterServer, ctx context.Context, in *RemoveItemRequest) (any, error) {
			return s.RemoveItem(ctx, in)
		}),
		unaryMethod("ClearCart", func(s RegisterServer, ctx context.Context, in *Empty) (any, error) {
			return s.ClearCart(ctx, in)
		}),
		unaryMethod("SetDiscount", func(s RegisterServer, ctx context.Context, in *SetDiscountRequest) (any, error) {
			return s.SetDiscount(ctx, in)
		}),
		unaryMethod("CommitOrder", func(s RegisterServer, ctx context.Context, in *CommitOrderRequest) (any, error) {
			return s.CommitOrder(ctx, in)
		}),
		unaryMethod("ListOrders", func(s RegisterServer, ctx context.Context, in *Empty) (any, error) {
			return s.ListOrders(ctx, in)
		}),
		unaryMethod("GetOrder", func(s RegisterServer, ctx context.Context, in *GetOrderRequest) (any, error) {
			return s.GetOrder(ctx, in)
		}),
		unaryMethod("RegisterCustomer", func(s RegisterServer, ctx context.Context, in *RegisterCustomerRequest) (any, error) {
			return s.RegisterCustomer(ctx, in)
		}),
		unaryMethod("ListCustomers", func(s RegisterServer, ctx context.Context, in *Empty) (any, error) {
			return s.ListCustomers(ctx, in)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pos/v1/register.proto",
}

func RegisterRegisterServer(s grpc.ServiceRegistrar, srv RegisterServer) {
	s.RegisterService(&registerServiceDesc, srv)
}

type GRPCHandler struct {
	register *service.RegisterService
}

func NewGRPCHandler(register *service.RegisterService) *GRPCHandler {
	return &GRPCHandler{register: register}
}

func (h *GRPCHandler) ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error) {
	products, err := h.register.ListProducts(ctx, req.Category)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListProductsResponse{Products: toProductDTOs(products)}, nil
}

func (h *GRPCHandler) ListCategories(ctx context.Context, _ *Empty) (*ListCategoriesResponse, error) {
	categories, err := h.register.ListCategories(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListCategoriesResponse{Categories: categories}, nil
}

func (h *GRPCHandler) GetCart(ctx context.Context, _ *Empty) (*CartViewDTO, error) {
	return h.cart(ctx)
}

func (h *GRPCHandler) AddItem(ctx context.Context, req *AddItemRequest) (*CartViewDTO, error) {
	if err := h.register.AddItem(ctx, req.ProductID); err != nil {
		return nil, toStatus(err)
	}
	return h.cart(ctx)
}

func (h *GRPCHandler) RemoveItem(ctx context.Context, req *RemoveItemRequest) (*CartViewDTO, error) {
	if err := h.register.RemoveItem(ctx, req.Index); err != nil {
		return nil, toStatus(err)
	}
	return h.cart(ctx)
}

func (h *GRPCHandler) ClearCart(ctx context.Context, _ *Empty) (*CartViewDTO, error) {
	if err := h.register.ClearCart(ctx); err != nil {
		return nil, toStatus(err)
	}
	return h.cart(ctx)
}

func (h *GRPCHandler) SetDiscount(ctx context.Context, req *SetDiscountRequest) (*CartViewDTO, error) {
	if err := h.register.SetDiscount(ctx, req.Discount); err != nil {
		return nil, toStatus(err)
	}
	return h.cart(ctx)
}

func (h *GRPCHandler) CommitOrder(ctx context.Context, req *CommitOrderRequest) (*OrderDTO, error) {
	order, err := h.register.CommitOrder(ctx, service.CommitRequest{
		Discount:   req.Discount,
		CustomerID: req.CustomerID,
		RequestID:  req.RequestID,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	dto := toOrderDTO(order)
	return &dto, nil
}

func (h *GRPCHandler) ListOrders(ctx context.Context, _ *Empty) (*ListOrdersResponse, error) {
	orders, err := h.register.ListOrders(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListOrdersResponse{Orders: toOrderDTOs(orders)}, nil
}

func (h *GRPCHandler) GetOrder(ctx context.Context, req *GetOrderRequest) (*OrderDTO, error) {
	order, err := h.register.GetOrder(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	dto := toOrderDTO(order)
	return &dto, nil
}

func (h *GRPCHandler) RegisterCustomer(ctx context.Context, req *RegisterCustomerRequest) (*CustomerDTO, error) {
	customer, err := h.register.RegisterCustomer(ctx, req.Name, req.Email)
	if err != nil {
		return nil, toStatus(err)
	}
	dto := toCustomerDTO(customer)
	return &dto, nil
}

func (h *GRPCHandler) ListCustomers(ctx context.Context, _ *Empty) (*ListCustomersResponse, error) {
	customers, err := h.register.ListCustomers(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListCustomersResponse{Customers: toCustomerDTOs(customers)}, nil
}

func (h *GRPCHandler) cart(ctx context.Context) (*CartViewDTO, error) {
	view, err := h.register.GetCartView(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toCartViewDTO(view), nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, service.ErrMissingField):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrDuplicateRequest):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCartLineNotFound),
		errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// UnaryLoggingInterceptor logs every unary call with its status code.
func UnaryLoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", time.Since(start)),
		}
		if code == codes.Internal || code == codes.Unknown {
			logger.Error("grpc call failed", append(fields, zap.Error(err))...)
		} else {
			logger.Info("grpc call", fields...)
		}
		return resp, err
	}
}

// RegisterClient is a typed client for pos.v1.RegisterService.
type RegisterClient struct {
	cc grpc.ClientConnInterface
}

func NewRegisterClient(cc grpc.ClientConnInterface) *RegisterClient {
	return &RegisterClient{cc: cc}
}

func (c *RegisterClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(jsonCodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+RegisterServiceName+"/"+method, in, out, opts...)
}

func (c *RegisterClient) ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	out := new(ListProductsResponse)
	if err := c.invoke(ctx, "ListProducts", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RegisterClient) ListCategories(ctx context.Context, opts ...grpc.CallOption) (*ListCategoriesResponse, error) {
	out := new(ListCategoriesResponse)
	if err := c.invoke(ctx, "ListCategories", &Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RegisterClient) GetCart(ctx context.Context, opts ...grpc.CallOption) (*CartViewDTO, error) {
	out := new(CartViewDTO)
	if err := c.invoke(ctx, "GetCart", &Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RegisterClient) AddItem(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*CartViewDTO, error) {
	out := new(CartViewDTO)
	if err := c.invoke(ctx, "AddItem", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RegisterClient) RemoveItem(ctx context.Context, in *RemoveItemRequest, opts ...grpc.CallOption) (*CartViewDTO, error) {
	out := new(CartViewDTO)
	if err := c.invoke(ctx, "RemoveItem", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RegisterClient) ClearCart(ctx context.Context, opts ...grpc.CallOption) (*CartViewDTO, error) {
	out := new(CartViewDTO)
	if err := c.invoke(ctx, "ClearCart", &Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RegisterClient) SetDiscount(ctx context.Context, in *SetDiscountRequest, opts ...grpc.CallOption) (*CartViewDTO, error) {
	out := new(CartViewDTO)
	if err := c.invoke(ctx, "SetDiscount", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RegisterClient) CommitOrder(ctx context.Context, in *CommitOrderRequest, opts ...grpc.CallOption) (*OrderDTO, error) {
	out := new(OrderDTO)
	if err := c.invoke(ctx, "CommitOrder", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RegisterClient) ListOrders(ctx context.Context, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	out := new(ListOrdersResponse)
	if err := c.invoke(ctx, "ListOrders", &Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RegisterClient) GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*OrderDTO, error) {
	out := new(OrderDTO)
	if err := c.invoke(ctx, "GetOrder", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RegisterClient) RegisterCustomer(ctx context.Context, in *RegisterCustomerRequest, opts ...grpc.CallOption) (*CustomerDTO, error) {
	out := new(CustomerDTO)
	if err := c.invoke(ctx, "RegisterCustomer", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RegisterClient) ListCustomers(ctx context.Context, opts ...grpc.CallOption) (*ListCustomersResponse, error) {
	out := new(ListCustomersResponse)
	if err := c.invoke(ctx, "ListCustomers", &Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
