package service

import (
	"context"

	"go-portfolio/internal/domain/model"
	"go-portfolio/internal/pkg/cache"
	"go-portfolio/internal/repository/dao"
	"go-portfolio/internal/util/retcode"
)

const userListKey = "users:list"

type UserService struct {
	DAO   *dao.UserDAO
	Cache cache.Cache
	TTL   ListTTL
}

func NewUserService(d *dao.UserDAO, c cache.Cache, ttl ListTTL) *UserService {
	return &UserService{DAO: d, Cache: c, TTL: ttl}
}

// CreateUserParams 缺失字段为 nil，按 NULL 写入
type CreateUserParams struct {
	Email       *string
	Age         *int64
	Designation *string
	Experience  *string
}

// Create 不做额外校验，email/age 缺失时由表的 NOT NULL 约束拒绝
func (s *UserService) Create(ctx context.Context, p CreateUserParams) (int64, error) {
	m := &model.User{Email: p.Email, Age: p.Age, Designation: p.Designation, Experience: p.Experience}
	if err := s.DAO.Create(ctx, m); err != nil {
		return 0, retcode.Storage(err)
	}
	invalidate(ctx, s.Cache, userListKey)
	return m.ID, nil
}

// List 按 id 倒序返回全部用户
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	list, err := cachedList(ctx, s.Cache, s.TTL, userListKey, "users", s.DAO.List)
	if err != nil {
		return nil, retcode.Storage(err)
	}
	return list, nil
}

// Delete 幂等，id 不存在同样成功
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.DAO.Delete(ctx, id); err != nil {
		return retcode.Storage(err)
	}
	invalidate(ctx, s.Cache, userListKey)
	return nil
}
