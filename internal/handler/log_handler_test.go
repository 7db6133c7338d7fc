package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/logtide/logtide/internal/handler"
	"github.com/logtide/logtide/internal/model"
	"github.com/logtide/logtide/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLogService struct {
	mock.Mock
}

func (m *MockLogService) IngestLine(ctx context.Context, source, line string) error {
	args := m.Called(ctx, source, line)
	return args.Error(0)
}

func (m *MockLogService) IngestBatch(ctx context.Context, source string, lines []string) (int, error) {
	args := m.Called(ctx, source, lines)
	return args.Int(0), args.Error(1)
}

func (m *MockLogService) Query(ctx context.Context, filters model.QueryFilters) ([]model.StoredLogRecord, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]model.StoredLogRecord), args.Error(1)
}

func (m *MockLogService) RawQuery(ctx context.Context, stmt string) (*repository.RawResult, error) {
	args := m.Called(ctx, stmt)
	return args.Get(0).(*repository.RawResult), args.Error(1)
}

func TestSubmitLog(t *testing.T) {
	mockService := new(MockLogService)
	h := handler.NewLogHandler(mockService)

	tests := []struct {
		name           string
		payload        string
		expectedStatus int
		expectedBody   string
		mockBehavior   func()
	}{
		{
			name:           "Valid line",
			payload:        `{"source":"svc","log":"2024-03-01\t10:00:00\tINFO\ttr-1\thello"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success":true}`,
			mockBehavior: func() {
				mockService.On("IngestLine", mock.Anything, "svc", "2024-03-01\t10:00:00\tINFO\ttr-1\thello").Return(nil).Once()
			},
		},
		{
			name:           "Malformed line",
			payload:        `{"source":"svc","log":"not a log line"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid log format"}`,
			mockBehavior: func() {
				mockService.On("IngestLine", mock.Anything, "svc", "not a log line").Return(model.ErrMalformedRecord).Once()
			},
		},
		{
			name:           "Invalid JSON body",
			payload:        `{"source":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request payload"}`,
			mockBehavior:   func() {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()

			req, _ := http.NewRequest("POST", "/api/log", bytes.NewBufferString(tt.payload))
			rr := httptest.NewRecorder()

			h.SubmitLog(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}

func TestSubmitBatch(t *testing.T) {
	mockService := new(MockLogService)
	h := handler.NewLogHandler(mockService)

	tests := []struct {
		name           string
		payload        string
		expectedStatus int
		expectedBody   string
		mockBehavior   func()
	}{
		{
			name:           "Valid batch",
			payload:        `{"source":"svc","logs":["2024-03-01\t10:00:00\tINFO\t\tone","2024-03-01\t10:00:01\tINFO\t\ttwo"]}`,
			expectedStatus: http.StatusOK,
			mockBehavior: func() {
				mockService.On("IngestBatch", mock.Anything, "svc", []string{
					"2024-03-01\t10:00:00\tINFO\t\tone",
					"2024-03-01\t10:00:01\tINFO\t\ttwo",
				}).Return(2, nil).Once()
			},
		},
		{
			name:           "Batch with malformed line rejected wholesale",
			payload:        `{"source":"svc","logs":["bad line"]}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid log format"}`,
			mockBehavior: func() {
				mockService.On("IngestBatch", mock.Anything, "svc", []string{"bad line"}).Return(0, model.ErrMalformedRecord).Once()
			},
		},
		{
			name:           "Invalid JSON body",
			payload:        `not json`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request payload"}`,
			mockBehavior:   func() {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()

			req, _ := http.NewRequest("POST", "/api/logs", bytes.NewBufferString(tt.payload))
			rr := httptest.NewRecorder()

			h.SubmitBatch(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestSubmitBatchResponseCarriesBatchID(t *testing.T) {
	mockService := new(MockLogService)
	h := handler.NewLogHandler(mockService)

	mockService.On("IngestBatch", mock.Anything, "svc", []string{"2024-03-01\t10:00:00\tINFO\t\tone"}).Return(1, nil).Once()

	req, _ := http.NewRequest("POST", "/api/logs", bytes.NewBufferString(`{"source":"svc","logs":["2024-03-01\t10:00:00\tINFO\t\tone"]}`))
	rr := httptest.NewRecorder()

	h.SubmitBatch(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Success bool   `json:"success"`
		Count   int    `json:"count"`
		BatchID string `json:"batch_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Count)

	_, err := uuid.Parse(body.BatchID)
	assert.NoError(t, err, "batch_id should be a well-formed uuid")

	mockService.AssertExpectations(t)
}

func TestQuery(t *testing.T) {
	mockService := new(MockLogService)
	h := handler.NewLogHandler(mockService)

	t.Run("Filters forwarded from query string", func(t *testing.T) {
		mockService.On("Query", mock.Anything, model.QueryFilters{
			Source:       "svc",
			Level:        "ERROR",
			TraceID:      "tr-1",
			StartDate:    "2024-01-01",
			EndDate:      "2024-01-31",
			ContentRegex: "time.*out",
			Limit:        25,
		}).Return([]model.StoredLogRecord{}, nil).Once()

		req, _ := http.NewRequest("GET", "/api/query?source=svc&level=ERROR&traceId=tr-1&startDate=2024-01-01&endDate=2024-01-31&contentRegex=time.*out&limit=25", nil)
		rr := httptest.NewRecorder()

		h.Query(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"results":[],"count":0}`, rr.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("Unparseable limit falls back to default", func(t *testing.T) {
		mockService.On("Query", mock.Anything, mock.MatchedBy(func(f model.QueryFilters) bool {
			return f.Limit == 0
		})).Return([]model.StoredLogRecord{}, nil).Once()

		req, _ := http.NewRequest("GET", "/api/query?limit=not-a-number", nil)
		rr := httptest.NewRecorder()

		h.Query(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Results and count returned", func(t *testing.T) {
		records := []model.StoredLogRecord{
			{ID: 1, Source: "svc", Date: "2024-03-01", Time: "10:00:00", Level: "INFO", Content: "hello"},
		}
		mockService.On("Query", mock.Anything, mock.Anything).Return(records, nil).Once()

		req, _ := http.NewRequest("GET", "/api/query?source=svc", nil)
		rr := httptest.NewRecorder()

		h.Query(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"count":1`)
		assert.Contains(t, rr.Body.String(), `"content":"hello"`)
	})

	t.Run("Storage failure surfaces as client error", func(t *testing.T) {
		mockService.On("Query", mock.Anything, mock.Anything).Return([]model.StoredLogRecord{}, model.ErrStorageFailure).Once()

		req, _ := http.NewRequest("GET", "/api/query", nil)
		rr := httptest.NewRecorder()

		h.Query(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"storage failure"}`, rr.Body.String())
	})
}

func TestRawQuery(t *testing.T) {
	mockService := new(MockLogService)
	h := handler.NewLogHandler(mockService)

	t.Run("Read returns rows", func(t *testing.T) {
		mockService.On("RawQuery", mock.Anything, "SELECT source FROM logs").Return(&repository.RawResult{
			Rows:   []map[string]interface{}{{"source": "svc"}},
			IsRead: true,
		}, nil).Once()

		req, _ := http.NewRequest("POST", "/api/query/sql", bytes.NewBufferString(`{"sql":"SELECT source FROM logs"}`))
		rr := httptest.NewRecorder()

		h.RawQuery(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"results":[{"source":"svc"}]}`, rr.Body.String())
	})

	t.Run("Write returns affected count", func(t *testing.T) {
		mockService.On("RawQuery", mock.Anything, "DELETE FROM logs").Return(&repository.RawResult{RowsAffected: 4}, nil).Once()

		req, _ := http.NewRequest("POST", "/api/query/sql", bytes.NewBufferString(`{"sql":"DELETE FROM logs"}`))
		rr := httptest.NewRecorder()

		h.RawQuery(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"results":{"changes":4}}`, rr.Body.String())
	})

	t.Run("Missing statement", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/api/query/sql", bytes.NewBufferString(`{}`))
		rr := httptest.NewRecorder()

		h.RawQuery(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"missing sql statement"}`, rr.Body.String())
	})

	t.Run("Engine error surfaces with message", func(t *testing.T) {
		mockService.On("RawQuery", mock.Anything, "SELECT nope").Return((*repository.RawResult)(nil), model.ErrStorageFailure).Once()

		req, _ := http.NewRequest("POST", "/api/query/sql", bytes.NewBufferString(`{"sql":"SELECT nope"}`))
		rr := httptest.NewRecorder()

		h.RawQuery(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"storage failure"}`, rr.Body.String())
	})
}
