package handler

import (
	"context"
	"encoding/json"
	"fmt"

	tokenapp "secureauth-server/internal/application/token_validation"
	"secureauth-server/internal/domain/token"
	"secureauth-server/internal/presentation/grpc/pb"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// TokenHandler gRPCトークン検証サービスハンドラー
type TokenHandler struct {
	tokenService *tokenapp.TokenValidationApplicationService
}

var _ pb.TokenValidationServiceServer = (*TokenHandler)(nil)

// NewTokenHandler 新しいTokenHandlerを作成
func NewTokenHandler(tokenService *tokenapp.TokenValidationApplicationService) *TokenHandler {
	return &TokenHandler{
		tokenService: tokenService,
	}
}

// ValidateToken トークン検証
func (h *TokenHandler) ValidateToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	value, err := tokenValue(req)
	if err != nil {
		return nil, h.handleError(err)
	}

	appResp, err := h.tokenService.ValidateToken(ctx, &tokenapp.ValidateTokenRequest{
		Token:     value,
		Transport: tokenapp.TransportGRPC,
	})
	if err != nil {
		return nil, h.handleError(err)
	}

	// 1e400のようにdoubleで表現できない数値はStructに変換できない
	resp, err := buildResponse(appResp)
	if err != nil {
		return nil, h.handleError(fmt.Errorf("%w: %v", token.ErrMalformedToken, err))
	}
	return resp, nil
}

// tokenValue リクエストのtokenフィールドをJSON値に変換
// フィールドがない場合は空のValueを返す
func tokenValue(req *structpb.Struct) (token.Value, error) {
	field, ok := req.GetFields()["token"]
	if !ok {
		return nil, nil
	}
	raw, err := json.Marshal(field.AsInterface())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", token.ErrInvalidRequestBody, err)
	}
	return token.Value(raw), nil
}

// buildResponse {"message": ..., "token": {...}} のStructを構築
func buildResponse(appResp *tokenapp.ValidateTokenResponse) (*structpb.Struct, error) {
	body, err := json.Marshal(struct {
		Message string          `json:"message"`
		Token   json.RawMessage `json:"token"`
	}{
		Message: appResp.Message,
		Token:   appResp.Payload.Raw(),
	})
	if err != nil {
		return nil, err
	}

	resp := &structpb.Struct{}
	if err := protojson.Unmarshal(body, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// handleError ドメインエラーをgRPCステータスに変換
func (h *TokenHandler) handleError(err error) error {
	if message, ok := token.ClientMessage(err); ok {
		return status.Error(codes.InvalidArgument, message)
	}
	return status.Error(codes.Internal, "internal server error")
}
