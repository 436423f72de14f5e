package cart

import (
	"context"

	"github.com/roastline/storefront/cmd/config"
	"github.com/roastline/storefront/constant"
	"github.com/roastline/storefront/model"
	redisrepo "github.com/roastline/storefront/repository/redis"
	"github.com/roastline/storefront/utils/errors"
	"github.com/roastline/storefront/utils/logger"
	"go.uber.org/zap"
)

// CartApp keeps a user's cart behind a storage port so the same logic works
// headlessly. Quantities never drop below 1; updates that would are ignored.
type CartApp interface {
	GetCart(ctx context.Context, userID string) (*model.CartResponse, error)
	AddItem(ctx context.Context, userID string, item *model.CartItem) (*model.CartResponse, error)
	UpdateQuantity(ctx context.Context, userID string, productID uint64, quantity int64) (*model.CartResponse, error)
	RemoveItem(ctx context.Context, userID string, productID uint64) (*model.CartResponse, error)
	ClearCart(ctx context.Context, userID string) error
}

type cartAppImpl struct {
	config    *config.Config
	redisRepo redisrepo.Repository
}

func NewCartApp(config *config.Config, redisRepo redisrepo.Repository) CartApp {
	return &cartAppImpl{
		config:    config,
		redisRepo: redisRepo,
	}
}

func (s *cartAppImpl) GetCart(ctx context.Context, userID string) (*model.CartResponse, error) {
	items, err := s.redisRepo.GetCart(ctx, userID)
	if err != nil {
		logger.Error("[GetCart] load cart", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}
	if items == nil {
		items = []model.CartItem{}
	}
	return &model.CartResponse{Items: items}, nil
}

func (s *cartAppImpl) AddItem(ctx context.Context, userID string, item *model.CartItem) (*model.CartResponse, error) {
	items, err := s.redisRepo.GetCart(ctx, userID)
	if err != nil {
		logger.Error("[AddItem] load cart", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}

	found := false
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, *item)
	}

	if err := s.saveCart(ctx, userID, items, "[AddItem]"); err != nil {
		return nil, err
	}
	return &model.CartResponse{Items: items}, nil
}

func (s *cartAppImpl) UpdateQuantity(ctx context.Context, userID string, productID uint64, quantity int64) (*model.CartResponse, error) {
	items, err := s.redisRepo.GetCart(ctx, userID)
	if err != nil {
		logger.Error("[UpdateQuantity] load cart", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}

	for i := range items {
		if items[i].ProductID == productID {
			// Quantity below 1 is ignored, not clamped.
			if quantity >= 1 {
				items[i].Quantity = quantity
				if err := s.saveCart(ctx, userID, items, "[UpdateQuantity]"); err != nil {
					return nil, err
				}
			}
			return &model.CartResponse{Items: items}, nil
		}
	}

	return nil, errors.SetCustomError(constant.ErrNotFound)
}

func (s *cartAppImpl) RemoveItem(ctx context.Context, userID string, productID uint64) (*model.CartResponse, error) {
	items, err := s.redisRepo.GetCart(ctx, userID)
	if err != nil {
		logger.Error("[RemoveItem] load cart", zap.String("error", err.Error()))
		return nil, errors.SetCustomError(constant.ErrInternal)
	}

	kept := make([]model.CartItem, 0, len(items))
	for _, it := range items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}

	if err := s.saveCart(ctx, userID, kept, "[RemoveItem]"); err != nil {
		return nil, err
	}
	return &model.CartResponse{Items: kept}, nil
}

func (s *cartAppImpl) ClearCart(ctx context.Context, userID string) error {
	if err := s.redisRepo.DeleteCart(ctx, userID); err != nil {
		logger.Error("[ClearCart] delete cart", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	return nil
}

func (s *cartAppImpl) saveCart(ctx context.Context, userID string, items []model.CartItem, op string) error {
	if err := s.redisRepo.SaveCart(ctx, userID, items, s.config.Cart.TTL); err != nil {
		logger.Error(op+" save cart", zap.String("error", err.Error()))
		return errors.SetCustomError(constant.ErrInternal)
	}
	return nil
}
