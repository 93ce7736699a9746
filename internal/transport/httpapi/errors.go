package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	ownersdomain "github.com/Apurer/storekeeper/internal/domains/owners/domain"
	apierrors "github.com/Apurer/storekeeper/internal/shared/errors"
)

const ownerKey = "storekeeper.owner"

// respondError renders a transport-level failure such as a malformed body.
func respondError(c *gin.Context, status int, err error) {
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound.WithDetail(err.Error())
	case http.StatusForbidden:
		problem = apierrors.ErrForbidden.WithDetail(err.Error())
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	apierrors.Respond(c, problem)
	c.Abort()
}

// respondServiceError maps an application error onto a problem response.
func (h *Handler) respondServiceError(c *gin.Context, err error) {
	h.responder.RespondError(c, err)
	c.Abort()
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		apierrors.Respond(c, apierrors.NewValidationProblem(map[string]string{name: "must be a positive integer"}).
			WithDetail(fmt.Sprintf("%s %q is not a valid id", name, c.Param(name))))
		c.Abort()
		return 0, false
	}
	return id, true
}

// loadOwner resolves :ownerId for every nested route.
func (h *Handler) loadOwner(c *gin.Context) {
	id, ok := parseIDParam(c, "ownerId")
	if !ok {
		return
	}
	owner, err := h.services.Owners.Get(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.Set(ownerKey, owner)
	c.Next()
}

func (h *Handler) requireActive(c *gin.Context) {
	if owner := ownerFrom(c); owner == nil || !owner.Active {
		respondError(c, http.StatusForbidden, fmt.Errorf("owner account is deactivated"))
		return
	}
	c.Next()
}

func ownerFrom(c *gin.Context) *ownersdomain.Owner {
	value, ok := c.Get(ownerKey)
	if !ok {
		return nil
	}
	owner, _ := value.(*ownersdomain.Owner)
	return owner
}

func ownerID(c *gin.Context) int64 {
	if owner := ownerFrom(c); owner != nil {
		return owner.ID
	}
	return 0
}
