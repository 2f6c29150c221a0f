package grpc

import (
	"github.com/goccy/go-json"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStruct 把 dto 經 JSON 轉成 Struct
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// fromStruct Struct 轉回 dto，數字在 Struct 裡是 float64，整數金額在 2^53 內不失真
func fromStruct(in *structpb.Struct, v any) error {
	data, err := json.Marshal(in.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
