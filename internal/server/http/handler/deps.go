package handler

import (
	apih "go-portfolio/internal/server/http/handler/api"
)

// HandlerSet 聚合 api 子包的 handler，供 router 使用
type HandlerSet struct {
	User    *apih.UserHandler
	Project *apih.ProjectHandler
	Image   *apih.ImageHandler
}

func NewHandlerSet(d apih.Dependencies) *HandlerSet {
	return &HandlerSet{
		User:    apih.NewUserHandler(d),
		Project: apih.NewProjectHandler(d),
		Image:   apih.NewImageHandler(d),
	}
}
