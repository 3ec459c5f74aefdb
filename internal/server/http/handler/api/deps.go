package api

import "go-portfolio/internal/service"

// Dependencies api 子包最小依赖集合
type Dependencies struct {
	User    *service.UserService
	Project *service.ProjectService
	Image   *service.ImageService
}
