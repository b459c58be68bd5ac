package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"szafa/internal/app"
	"szafa/internal/core/apperror"
	"szafa/internal/infrastructure/storage/memory"
	"szafa/pkg/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	services := app.NewServices(app.MemoryStorage(memory.NewStore()), app.Settings{})
	return NewRouter(RouterConfig{
		Services:         services,
		Logger:           logger.NewNop(),
		NumberingRetries: 3,
	})
}

func call(t *testing.T, r *gin.Engine, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func mustCreate(t *testing.T, r *gin.Engine, path string, body any) string {
	t.Helper()
	code, out := call(t, r, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, code, out)
	return out["id"].(string)
}

func TestHealthLive(t *testing.T) {
	r := newTestRouter(t)

	code, out := call(t, r, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", out["status"])
}

func TestUnknownDictionary(t *testing.T) {
	r := newTestRouter(t)

	code, out := call(t, r, http.MethodPost, "/api/v1/dictionaries/warehouse", map[string]any{"name": "X"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, apperror.CodeNotFound, out["code"])
}

func TestCreateProduct_DuplicateCode(t *testing.T) {
	r := newTestRouter(t)
	catID := mustCreate(t, r, "/api/v1/categories", map[string]any{"name": "Gloves", "type": "bhp"})

	body := map[string]any{"code": "RK-1", "name": "Work gloves", "categoryId": catID, "unitPrice": "9.90"}
	mustCreate(t, r, "/api/v1/products", body)

	code, out := call(t, r, http.MethodPost, "/api/v1/products", body)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, apperror.CodeDuplicate, out["code"])
}

func TestInvalidIDParam(t *testing.T) {
	r := newTestRouter(t)

	code, out := call(t, r, http.MethodGet, "/api/v1/issues/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, apperror.CodeValidation, out["code"])
}

func TestIssueAndReturnFlow(t *testing.T) {
	r := newTestRouter(t)

	companyID := mustCreate(t, r, "/api/v1/dictionaries/company", map[string]any{"name": "Ceva 1"})
	departmentID := mustCreate(t, r, "/api/v1/dictionaries/department", map[string]any{"name": "Logistics"})
	positionID := mustCreate(t, r, "/api/v1/dictionaries/position", map[string]any{"name": "Picker"})
	catID := mustCreate(t, r, "/api/v1/categories", map[string]any{"name": "Boots", "type": "footwear"})
	productID := mustCreate(t, r, "/api/v1/products", map[string]any{
		"code": "BUT-01", "name": "Safety boot", "categoryId": catID, "unitPrice": "120.00", "periodDays": 365,
	})

	employeeID := mustCreate(t, r, "/api/v1/employees", map[string]any{
		"cardNumber": "1001", "firstName": "Anna", "lastName": "Nowak",
		"positionId": positionID, "departmentId": departmentID, "companyId": companyID,
	})
	mustCreate(t, r, "/api/v1/employees/"+employeeID+"/periods", map[string]any{"startDate": "2024-01-01"})

	code, out := call(t, r, http.MethodPost, "/api/v1/stock/adjustments", map[string]any{
		"productId": productID, "size": "42", "delta": 5, "note": "opening balance",
	})
	require.Equal(t, http.StatusCreated, code, out)
	assert.EqualValues(t, 5, out["quantity"])

	code, out = call(t, r, http.MethodPost, "/api/v1/issues", map[string]any{
		"employeeId": employeeID,
		"issueDate":  "2024-06-03",
		"items":      []map[string]any{{"productId": productID, "quantity": 2, "size": "42"}},
	})
	require.Equal(t, http.StatusCreated, code, out)
	assert.Equal(t, "DW/2024/06/0001", out["documentNumber"])
	items := out["items"].([]any)
	require.Len(t, items, 1)
	itemID := items[0].(map[string]any)["id"].(string)

	code, out = call(t, r, http.MethodGet, "/api/v1/stock?productId="+productID, nil)
	require.Equal(t, http.StatusOK, code)
	balances := out["items"].([]any)
	require.Len(t, balances, 1)
	assert.EqualValues(t, 3, balances[0].(map[string]any)["quantity"])

	code, out = call(t, r, http.MethodPost, "/api/v1/issue-items/"+itemID+"/return", nil)
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, "returned", out["status"])

	code, out = call(t, r, http.MethodPost, "/api/v1/issue-items/"+itemID+"/use", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, apperror.CodeInvalidTransition, out["code"])

	code, _ = call(t, r, http.MethodDelete, "/api/v1/employees/"+employeeID, nil)
	assert.Equal(t, http.StatusConflict, code)
}
