package handler

import (
	"math"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func field(req *structpb.Struct, key string) (*structpb.Value, bool) {
	if req == nil {
		return nil, false
	}
	v, ok := req.GetFields()[key]
	if !ok {
		return nil, false
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, false
	}
	return v, true
}

func stringField(req *structpb.Struct, key string) (string, error) {
	v, ok := field(req, key)
	if !ok {
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", key)
	}
	return s.StringValue, nil
}

func requiredString(req *structpb.Struct, key string) (string, error) {
	s, err := stringField(req, key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	return s, nil
}

func optionalString(req *structpb.Struct, key string) (*string, error) {
	s, err := stringField(req, key)
	if err != nil || s == "" {
		return nil, err
	}
	return &s, nil
}

func optionalNumber(req *structpb.Struct, key string) (*float64, error) {
	v, ok := field(req, key)
	if !ok {
		return nil, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a number", key)
	}
	return &n.NumberValue, nil
}

func requiredNumber(req *structpb.Struct, key string) (float64, error) {
	n, err := optionalNumber(req, key)
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	return *n, nil
}

func requiredInt(req *structpb.Struct, key string) (int, error) {
	n, err := requiredNumber(req, key)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a whole number", key)
	}
	return int(n), nil
}

func optionalTime(req *structpb.Struct, key string) (*time.Time, error) {
	s, err := stringField(req, key)
	if err != nil || s == "" {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be an RFC 3339 timestamp", key)
	}
	return &t, nil
}

func recordValue(rec *model.InventoryRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":              rec.ID,
		"category":        rec.Category,
		"attribute_value": rec.AttributeValue,
		"quantity":        rec.Quantity,
		"created_at":      rec.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":      rec.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func movementValue(m *model.InventoryMovement) map[string]interface{} {
	var ref interface{}
	if m.Reference != nil {
		ref = *m.Reference
	}
	return map[string]interface{}{
		"id":              m.ID,
		"record_id":       m.RecordID,
		"movement_type":   string(m.MovementType),
		"quantity_change": m.QuantityChange,
		"quantity_before": m.QuantityBefore,
		"quantity_after":  m.QuantityAfter,
		"reference":       ref,
		"created_at":      m.CreatedAt.Format(time.RFC3339Nano),
	}
}

func recordResponse(rec *model.InventoryRecord) (*structpb.Struct, error) {
	return toStruct(recordValue(rec))
}

func recordsResponse(records []model.InventoryRecord) (*structpb.Struct, error) {
	items := make([]interface{}, len(records))
	for i := range records {
		items[i] = recordValue(&records[i])
	}
	return toStruct(map[string]interface{}{"items": items})
}

func movementsResponse(movements []model.InventoryMovement) (*structpb.Struct, error) {
	items := make([]interface{}, len(movements))
	for i := range movements {
		items[i] = movementValue(&movements[i])
	}
	return toStruct(map[string]interface{}{"items": items})
}

func toStruct(m map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return s, nil
}
