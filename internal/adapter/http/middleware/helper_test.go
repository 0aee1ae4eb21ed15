package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"

	"github.com/lrcollege/tipledger/internal/adapter/http/dto"
)

func decodeBody(rec *httptest.ResponseRecorder) dto.ErrorResponse {
	var resp dto.ErrorResponse
	_ = json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&resp)
	return resp
}
