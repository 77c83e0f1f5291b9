package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sns-backend/internal/mocks"
	"sns-backend/internal/models"
	"sns-backend/internal/scoring"
	"sns-backend/internal/sentiment"
)

func setupAnalysisRouter(analyzer *mocks.AnalyzerMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewAnalysisHandler(analyzer)
	r.POST("/analysis/sentiment", handler.Sentiment)
	r.POST("/analysis/wordcloud", handler.WordCloud)
	r.POST("/analysis/intimacy", handler.Intimacy)
	return r
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSentimentAnalysisSuccess(t *testing.T) {
	analyzer := new(mocks.AnalyzerMock)
	router := setupAnalysisRouter(analyzer)

	analyzer.On("Analyze", mock.Anything, "what a day").
		Return(models.Sentiment{Score: 0.7, Positive: 0.8, Negative: 0.1, Neutral: 0.1}, nil).Once()

	rec := postJSON(router, "/analysis/sentiment", `{"text":"what a day"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Sentiment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 0.7, resp.Score)
}

func TestSentimentAnalysisUnconfigured(t *testing.T) {
	analyzer := new(mocks.AnalyzerMock)
	router := setupAnalysisRouter(analyzer)

	analyzer.On("Analyze", mock.Anything, "hi").
		Return(models.Sentiment{}, sentiment.ErrNotConfigured).Once()

	rec := postJSON(router, "/analysis/sentiment", `{"text":"hi"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSentimentAnalysisUpstreamFailure(t *testing.T) {
	analyzer := new(mocks.AnalyzerMock)
	router := setupAnalysisRouter(analyzer)

	analyzer.On("Analyze", mock.Anything, "hi").
		Return(models.Sentiment{}, assert.AnError).Once()

	rec := postJSON(router, "/analysis/sentiment", `{"text":"hi"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSentimentAnalysisMissingText(t *testing.T) {
	router := setupAnalysisRouter(new(mocks.AnalyzerMock))

	rec := postJSON(router, "/analysis/sentiment", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWordCloudAnalysis(t *testing.T) {
	router := setupAnalysisRouter(new(mocks.AnalyzerMock))

	rec := postJSON(router, "/analysis/wordcloud",
		`{"messages":["coffee coffee tea","coffee break"],"top_n":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Words []scoring.WordCount `json:"words"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Words, 2)
	assert.Equal(t, "coffee", resp.Words[0].Word)
	assert.Equal(t, 3, resp.Words[0].Frequency)
}

func TestIntimacyAnalysis(t *testing.T) {
	router := setupAnalysisRouter(new(mocks.AnalyzerMock))

	rec := postJSON(router, "/analysis/intimacy",
		`{"sentiment_scores":[0.5,0.5],"message_count":10,"last_sender_id":2,"current_user_id":1,"consecutive_counts":{"1":2,"2":3}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp scoring.Breakdown
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 30.0, resp.SentimentFactor)
	assert.Equal(t, 20.0, resp.FlowFactor)
	assert.Equal(t, 10.0, resp.ConsecutiveFactor)
	assert.InDelta(t, resp.SentimentFactor+resp.FrequencyFactor+resp.FlowFactor+resp.ConsecutiveFactor,
		resp.IntimacyScore, 1e-9)
}

func TestIntimacyAnalysisBadConsecutiveKeys(t *testing.T) {
	router := setupAnalysisRouter(new(mocks.AnalyzerMock))

	rec := postJSON(router, "/analysis/intimacy",
		`{"current_user_id":1,"consecutive_counts":{"alice":2}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
