package fosv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestCodecRegistered(t *testing.T) {
	codec := encoding.GetCodec(CodecName)
	require.NotNil(t, codec)
	assert.Equal(t, CodecName, codec.Name())
}

func TestCodecRoundTripMessages(t *testing.T) {
	var codec Codec
	in := &PlaceOrderRequest{
		CustomerId:    "cust-1",
		VendorId:      "vendor-1",
		PaymentMethod: "paypal",
		CaptureId:     "CAP-1",
		Items:         []*OrderItem{{ProductId: "p-1", Qty: 2, UnitPrice: "12.50"}},
	}

	data, err := codec.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"unit_price":"12.50"`)

	var out PlaceOrderRequest
	require.NoError(t, codec.Unmarshal(data, &out))
	assert.Equal(t, in, &out)
}

func TestCodecProtoMessages(t *testing.T) {
	var codec Codec
	data, err := codec.Marshal(wrapperspb.String("ready"))
	require.NoError(t, err)

	out := &wrapperspb.StringValue{}
	require.NoError(t, codec.Unmarshal(data, out))
	assert.Equal(t, "ready", out.GetValue())
}

func TestCodecHealthMessages(t *testing.T) {
	var codec Codec
	data, err := codec.Marshal(&healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"SERVING"}`, string(data))

	var req healthpb.HealthCheckRequest
	require.NoError(t, codec.Unmarshal([]byte(`{"service":"fos.v1.OrderService","extra":1}`), &req))
	assert.Equal(t, "fos.v1.OrderService", req.GetService())
}

func TestCodecUnmarshalError(t *testing.T) {
	var codec Codec
	var out GetOrderRequest
	assert.Error(t, codec.Unmarshal([]byte("{broken"), &out))
}

func TestNilGetters(t *testing.T) {
	var order *Order
	assert.Empty(t, order.GetId())
	assert.Empty(t, order.GetStatus())

	var req *CancelOrderRequest
	assert.Empty(t, req.GetOrderId())
}
