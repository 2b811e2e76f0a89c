package controller

import (
	"sst_backend/internal/service"
	"sst_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	CertificateService *service.CertificateService
}

func NewCertificateController(certificateService *service.CertificateService) *CertificateController {
	return &CertificateController{CertificateService: certificateService}
}

// Mine godoc
// @Summary My certificates
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Certificate}
// @Router /api/certificates/mine [get]
func (c *CertificateController) Mine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	certificates, err := c.CertificateService.ListByUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, certificates)
}

// Get godoc
// @Summary One of my certificates
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Success 200 {object} util.Response{data=model.Certificate}
// @Failure 404 {object} util.Response
// @Router /api/certificates/{id} [get]
func (c *CertificateController) Get(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	certificate, err := c.CertificateService.GetByID(claims.UserID, id)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, certificate)
}

// Verify godoc
// @Summary Verify a certificate by code (public)
// @Tags certificates
// @Produce json
// @Param code path string true "Verification code"
// @Success 200 {object} util.Response{data=model.Certificate}
// @Failure 404 {object} util.Response
// @Router /api/certificates/verify/{code} [get]
func (c *CertificateController) Verify(ctx *gin.Context) {
	code := ctx.Param("code")
	certificate, err := c.CertificateService.Verify(code)
	if err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, certificate)
}

// Revoke godoc
// @Summary Revoke a certificate (admin)
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Success 200 {object} util.Response
// @Router /api/certificates/{id}/revoke [post]
func (c *CertificateController) Revoke(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CertificateService.Revoke(id); err != nil {
		util.DomainError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
