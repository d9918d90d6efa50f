package fosv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Требуется grpc-go v1.64 и новее.
const _ = grpc.SupportPackageIsVersion9

const (
	OrderService_PlaceOrder_FullMethodName          = "/fos.v1.OrderService/PlaceOrder"
	OrderService_GetOrder_FullMethodName            = "/fos.v1.OrderService/GetOrder"
	OrderService_ListOrders_FullMethodName          = "/fos.v1.OrderService/ListOrders"
	OrderService_RequestStatusChange_FullMethodName = "/fos.v1.OrderService/RequestStatusChange"
	OrderService_AdvanceOrderStatus_FullMethodName  = "/fos.v1.OrderService/AdvanceOrderStatus"
	OrderService_CancelOrder_FullMethodName         = "/fos.v1.OrderService/CancelOrder"
	OrderService_ComputeRevenueSplit_FullMethodName = "/fos.v1.OrderService/ComputeRevenueSplit"
	OrderService_BuildChartSeries_FullMethodName    = "/fos.v1.OrderService/BuildChartSeries"
	OrderService_GetTimeline_FullMethodName         = "/fos.v1.OrderService/GetTimeline"
)

// OrderServiceClient — клиентский API fos.v1.OrderService.
type OrderServiceClient interface {
	PlaceOrder(ctx context.Context, in *PlaceOrderRequest, opts ...grpc.CallOption) (*PlaceOrderResponse, error)
	GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*GetOrderResponse, error)
	ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error)
	RequestStatusChange(ctx context.Context, in *RequestStatusChangeRequest, opts ...grpc.CallOption) (*RequestStatusChangeResponse, error)
	AdvanceOrderStatus(ctx context.Context, in *AdvanceOrderStatusRequest, opts ...grpc.CallOption) (*AdvanceOrderStatusResponse, error)
	CancelOrder(ctx context.Context, in *CancelOrderRequest, opts ...grpc.CallOption) (*CancelOrderResponse, error)
	ComputeRevenueSplit(ctx context.Context, in *ComputeRevenueSplitRequest, opts ...grpc.CallOption) (*ComputeRevenueSplitResponse, error)
	BuildChartSeries(ctx context.Context, in *BuildChartSeriesRequest, opts ...grpc.CallOption) (*BuildChartSeriesResponse, error)
	GetTimeline(ctx context.Context, in *GetTimelineRequest, opts ...grpc.CallOption) (*GetTimelineResponse, error)
}

type orderServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewOrderServiceClient создаёт клиента; вызовы идут с content-subtype json.
func NewOrderServiceClient(cc grpc.ClientConnInterface) OrderServiceClient {
	return &orderServiceClient{cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *orderServiceClient) PlaceOrder(ctx context.Context, in *PlaceOrderRequest, opts ...grpc.CallOption) (*PlaceOrderResponse, error) {
	out := new(PlaceOrderResponse)
	err := c.cc.Invoke(ctx, OrderService_PlaceOrder_FullMethodName, in, out, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*GetOrderResponse, error) {
	out := new(GetOrderResponse)
	err := c.cc.Invoke(ctx, OrderService_GetOrder_FullMethodName, in, out, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	out := new(ListOrdersResponse)
	err := c.cc.Invoke(ctx, OrderService_ListOrders_FullMethodName, in, out, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) RequestStatusChange(ctx context.Context, in *RequestStatusChangeRequest, opts ...grpc.CallOption) (*RequestStatusChangeResponse, error) {
	out := new(RequestStatusChangeResponse)
	err := c.cc.Invoke(ctx, OrderService_RequestStatusChange_FullMethodName, in, out, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) AdvanceOrderStatus(ctx context.Context, in *AdvanceOrderStatusRequest, opts ...grpc.CallOption) (*AdvanceOrderStatusResponse, error) {
	out := new(AdvanceOrderStatusResponse)
	err := c.cc.Invoke(ctx, OrderService_AdvanceOrderStatus_FullMethodName, in, out, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) CancelOrder(ctx context.Context, in *CancelOrderRequest, opts ...grpc.CallOption) (*CancelOrderResponse, error) {
	out := new(CancelOrderResponse)
	err := c.cc.Invoke(ctx, OrderService_CancelOrder_FullMethodName, in, out, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) ComputeRevenueSplit(ctx context.Context, in *ComputeRevenueSplitRequest, opts ...grpc.CallOption) (*ComputeRevenueSplitResponse, error) {
	out := new(ComputeRevenueSplitResponse)
	err := c.cc.Invoke(ctx, OrderService_ComputeRevenueSplit_FullMethodName, in, out, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) BuildChartSeries(ctx context.Context, in *BuildChartSeriesRequest, opts ...grpc.CallOption) (*BuildChartSeriesResponse, error) {
	out := new(BuildChartSeriesResponse)
	err := c.cc.Invoke(ctx, OrderService_BuildChartSeries_FullMethodName, in, out, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) GetTimeline(ctx context.Context, in *GetTimelineRequest, opts ...grpc.CallOption) (*GetTimelineResponse, error) {
	out := new(GetTimelineResponse)
	err := c.cc.Invoke(ctx, OrderService_GetTimeline_FullMethodName, in, out, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// OrderServiceServer — серверная часть fos.v1.OrderService.
// Реализации должны встраивать UnimplementedOrderServiceServer.
type OrderServiceServer interface {
	PlaceOrder(context.Context, *PlaceOrderRequest) (*PlaceOrderResponse, error)
	GetOrder(context.Context, *GetOrderRequest) (*GetOrderResponse, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
	RequestStatusChange(context.Context, *RequestStatusChangeRequest) (*RequestStatusChangeResponse, error)
	AdvanceOrderStatus(context.Context, *AdvanceOrderStatusRequest) (*AdvanceOrderStatusResponse, error)
	CancelOrder(context.Context, *CancelOrderRequest) (*CancelOrderResponse, error)
	ComputeRevenueSplit(context.Context, *ComputeRevenueSplitRequest) (*ComputeRevenueSplitResponse, error)
	BuildChartSeries(context.Context, *BuildChartSeriesRequest) (*BuildChartSeriesResponse, error)
	GetTimeline(context.Context, *GetTimelineRequest) (*GetTimelineResponse, error)
	mustEmbedUnimplementedOrderServiceServer()
}

// UnimplementedOrderServiceServer отвечает Unimplemented на все методы.
type UnimplementedOrderServiceServer struct{}

func (UnimplementedOrderServiceServer) PlaceOrder(context.Context, *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PlaceOrder not implemented")
}
func (UnimplementedOrderServiceServer) GetOrder(context.Context, *GetOrderRequest) (*GetOrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetOrder not implemented")
}
func (UnimplementedOrderServiceServer) ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListOrders not implemented")
}
func (UnimplementedOrderServiceServer) RequestStatusChange(context.Context, *RequestStatusChangeRequest) (*RequestStatusChangeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RequestStatusChange not implemented")
}
func (UnimplementedOrderServiceServer) AdvanceOrderStatus(context.Context, *AdvanceOrderStatusRequest) (*AdvanceOrderStatusResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AdvanceOrderStatus not implemented")
}
func (UnimplementedOrderServiceServer) CancelOrder(context.Context, *CancelOrderRequest) (*CancelOrderResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelOrder not implemented")
}
func (UnimplementedOrderServiceServer) ComputeRevenueSplit(context.Context, *ComputeRevenueSplitRequest) (*ComputeRevenueSplitResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ComputeRevenueSplit not implemented")
}
func (UnimplementedOrderServiceServer) BuildChartSeries(context.Context, *BuildChartSeriesRequest) (*BuildChartSeriesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method BuildChartSeries not implemented")
}
func (UnimplementedOrderServiceServer) GetTimeline(context.Context, *GetTimelineRequest) (*GetTimelineResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTimeline not implemented")
}
func (UnimplementedOrderServiceServer) mustEmbedUnimplementedOrderServiceServer() {}

func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&OrderService_ServiceDesc, srv)
}

func _OrderService_PlaceOrder_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PlaceOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).PlaceOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: OrderService_PlaceOrder_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderServiceServer).PlaceOrder(ctx, req.(*PlaceOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderService_GetOrder_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).GetOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: OrderService_GetOrder_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderServiceServer).GetOrder(ctx, req.(*GetOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderService_ListOrders_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListOrdersRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).ListOrders(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: OrderService_ListOrders_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderServiceServer).ListOrders(ctx, req.(*ListOrdersRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderService_RequestStatusChange_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RequestStatusChangeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).RequestStatusChange(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: OrderService_RequestStatusChange_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderServiceServer).RequestStatusChange(ctx, req.(*RequestStatusChangeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderService_AdvanceOrderStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(AdvanceOrderStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).AdvanceOrderStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: OrderService_AdvanceOrderStatus_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderServiceServer).AdvanceOrderStatus(ctx, req.(*AdvanceOrderStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderService_CancelOrder_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CancelOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).CancelOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: OrderService_CancelOrder_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderServiceServer).CancelOrder(ctx, req.(*CancelOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderService_ComputeRevenueSplit_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ComputeRevenueSplitRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).ComputeRevenueSplit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: OrderService_ComputeRevenueSplit_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderServiceServer).ComputeRevenueSplit(ctx, req.(*ComputeRevenueSplitRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderService_BuildChartSeries_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(BuildChartSeriesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).BuildChartSeries(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: OrderService_BuildChartSeries_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderServiceServer).BuildChartSeries(ctx, req.(*BuildChartSeriesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _OrderService_GetTimeline_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetTimelineRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).GetTimeline(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: OrderService_GetTimeline_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderServiceServer).GetTimeline(ctx, req.(*GetTimelineRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// OrderService_ServiceDesc — описание сервиса для grpc.RegisterService.
var OrderService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "fos.v1.OrderService",
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PlaceOrder",
			Handler:    _OrderService_PlaceOrder_Handler,
		},
		{
			MethodName: "GetOrder",
			Handler:    _OrderService_GetOrder_Handler,
		},
		{
			MethodName: "ListOrders",
			Handler:    _OrderService_ListOrders_Handler,
		},
		{
			MethodName: "RequestStatusChange",
			Handler:    _OrderService_RequestStatusChange_Handler,
		},
		{
			MethodName: "AdvanceOrderStatus",
			Handler:    _OrderService_AdvanceOrderStatus_Handler,
		},
		{
			MethodName: "CancelOrder",
			Handler:    _OrderService_CancelOrder_Handler,
		},
		{
			MethodName: "ComputeRevenueSplit",
			Handler:    _OrderService_ComputeRevenueSplit_Handler,
		},
		{
			MethodName: "BuildChartSeries",
			Handler:    _OrderService_BuildChartSeries_Handler,
		},
		{
			MethodName: "GetTimeline",
			Handler:    _OrderService_GetTimeline_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fos/v1/messages.go",
}
