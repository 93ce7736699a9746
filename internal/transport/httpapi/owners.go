package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ownersmapper "github.com/Apurer/storekeeper/internal/domains/owners/adapters/http/mapper"
)

// Post /v1/owners
// Registers a store owner
func (h *Handler) RegisterOwner(c *gin.Context) {
	var payload ownersmapper.RegisterRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	owner, err := h.services.Owners.Register(c.Request.Context(), ownersmapper.ToRegisterInput(payload))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ownersmapper.FromOwner(owner))
}

// Get /v1/owners/:ownerId
func (h *Handler) GetOwner(c *gin.Context) {
	c.JSON(http.StatusOK, ownersmapper.FromOwner(ownerFrom(c)))
}

// Patch /v1/owners/:ownerId
// Changes the store name or language
func (h *Handler) UpdateOwner(c *gin.Context) {
	var payload ownersmapper.SettingsRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	owner, err := h.services.Owners.UpdateSettings(c.Request.Context(), ownerID(c), ownersmapper.ToSettingsInput(payload))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ownersmapper.FromOwner(owner))
}

// Delete /v1/owners/:ownerId
// Deletes the owner together with the whole store
func (h *Handler) DeleteOwner(c *gin.Context) {
	if err := h.services.Owners.Delete(c.Request.Context(), ownerID(c)); err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/owners/:ownerId/store
func (h *Handler) GetStore(c *gin.Context) {
	info, err := h.services.Owners.StoreInfo(c.Request.Context(), ownerID(c))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ownersmapper.FromStoreInfo(info))
}
