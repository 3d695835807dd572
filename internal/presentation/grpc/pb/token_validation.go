// Package pb トークン検証gRPCサービスの定義
//
// メッセージはgoogle.protobuf.Structで表現するためコード生成を必要としない。
//
//	service TokenValidationService {
//	  // request:  {"token": "<json-string>"}
//	  // response: {"message": "Token received", "token": {...}}
//	  rpc ValidateToken(google.protobuf.Struct) returns (google.protobuf.Struct);
//	}
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// TokenValidationServiceName サービスの完全修飾名
	TokenValidationServiceName = "secureauth.v1.TokenValidationService"

	// ValidateTokenFullMethod ValidateTokenのフルメソッド名
	ValidateTokenFullMethod = "/" + TokenValidationServiceName + "/ValidateToken"
)

// TokenValidationServiceServer サーバー側インターフェース
type TokenValidationServiceServer interface {
	ValidateToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterTokenValidationServiceServer サービスをgRPCサーバーに登録
func RegisterTokenValidationServiceServer(s grpc.ServiceRegistrar, srv TokenValidationServiceServer) {
	s.RegisterService(&TokenValidationServiceDesc, srv)
}

func validateTokenHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TokenValidationServiceServer).ValidateToken(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ValidateTokenFullMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TokenValidationServiceServer).ValidateToken(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// TokenValidationServiceDesc サービス記述子
var TokenValidationServiceDesc = grpc.ServiceDesc{
	ServiceName: TokenValidationServiceName,
	HandlerType: (*TokenValidationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ValidateToken",
			Handler:    validateTokenHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "secureauth/v1/token_validation.proto",
}

// TokenValidationServiceClient クライアント側インターフェース
type TokenValidationServiceClient interface {
	ValidateToken(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type tokenValidationServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTokenValidationServiceClient 新しいクライアントを作成
func NewTokenValidationServiceClient(cc grpc.ClientConnInterface) TokenValidationServiceClient {
	return &tokenValidationServiceClient{cc: cc}
}

func (c *tokenValidationServiceClient) ValidateToken(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ValidateTokenFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
