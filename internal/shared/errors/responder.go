package errors

import (
	"errors"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// Respond writes problem with the problem+json content type. Instance
// defaults to the request path.
func Respond(c *gin.Context, problem ProblemDetail) {
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

// ErrorMapper maps an application error to a problem. It reports false for
// errors it does not recognise.
type ErrorMapper func(err error) (ProblemDetail, bool)

// ChainedResponder tries each mapper in turn. Errors no mapper recognises are
// logged and answered with a bare 500 so internals never reach the client.
type ChainedResponder struct {
	mappers []ErrorMapper
	logger  *slog.Logger
}

// NewChainedResponder builds a responder over mappers.
func NewChainedResponder(logger *slog.Logger, mappers ...ErrorMapper) *ChainedResponder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ChainedResponder{mappers: mappers, logger: logger}
}

// RespondError renders err as a problem.
func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	var problem ProblemDetail
	if errors.As(err, &problem) {
		Respond(c, problem)
		return
	}
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			if problem.Status >= 500 {
				r.logFailure(c, err)
			}
			Respond(c, problem)
			return
		}
	}
	r.logFailure(c, err)
	Respond(c, ErrInternal)
}

func (r *ChainedResponder) logFailure(c *gin.Context, err error) {
	r.logger.LogAttrs(c.Request.Context(), slog.LevelError, "request failed",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
	)
}
