package service

import (
	"context"

	"go-portfolio/internal/domain/model"
	"go-portfolio/internal/pkg/cache"
	"go-portfolio/internal/repository/dao"
	"go-portfolio/internal/util/retcode"
)

const projectListKey = "projects:list"

type ProjectService struct {
	DAO   *dao.ProjectDAO
	Cache cache.Cache
	TTL   ListTTL
}

func NewProjectService(d *dao.ProjectDAO, c cache.Cache, ttl ListTTL) *ProjectService {
	return &ProjectService{DAO: d, Cache: c, TTL: ttl}
}

type CreateProjectParams struct {
	Name        *string
	URL         *string
	Description *string
}

func (s *ProjectService) Create(ctx context.Context, p CreateProjectParams) (int64, error) {
	m := &model.Project{Name: p.Name, URL: p.URL, Description: p.Description}
	if err := s.DAO.Create(ctx, m); err != nil {
		return 0, retcode.Storage(err)
	}
	invalidate(ctx, s.Cache, projectListKey)
	return m.ID, nil
}

func (s *ProjectService) List(ctx context.Context) ([]model.Project, error) {
	list, err := cachedList(ctx, s.Cache, s.TTL, projectListKey, "projects", s.DAO.List)
	if err != nil {
		return nil, retcode.Storage(err)
	}
	return list, nil
}

func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	if err := s.DAO.Delete(ctx, id); err != nil {
		return retcode.Storage(err)
	}
	invalidate(ctx, s.Cache, projectListKey)
	return nil
}
