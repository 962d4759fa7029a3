package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/maderasur/corralon-api/internal/application/dto"
	"github.com/maderasur/corralon-api/internal/domain"
	"github.com/maderasur/corralon-api/internal/domain/entity"
	"github.com/maderasur/corralon-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos del catálogo. El stock no
// se edita por acá: solo lo mueve la reconciliación de ventas.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create da de alta un producto. La madera requiere precio por unidad de
// venta; ferretería/genérico requieren precio de venta directo.
func (uc *ProductUseCase) Create(in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.Category == entity.CategoryWood && in.PricePerUnit.IsZero() {
		return nil, domain.Validation("price_per_unit", "la madera requiere precio por pie/m2/unidad")
	}
	if in.Category != entity.CategoryWood && in.RetailPrice.IsZero() {
		return nil, domain.Validation("retail_price", "ferretería y genéricos requieren precio de venta")
	}

	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Category:     in.Category,
		SaleUnit:     in.SaleUnit,
		Height:       in.Height,
		Width:        in.Width,
		Length:       in.Length,
		PricePerUnit: in.PricePerUnit,
		RetailPrice:  in.RetailPrice,
		Stock:        in.Stock,
		Cepillado:    in.Cepillado,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID devuelve un producto o nil si no existe.
func (uc *ProductUseCase) GetByID(id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// List devuelve una página del catálogo.
func (uc *ProductUseCase) List(page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	products, err := uc.repo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductListResponse{
		Items: make([]dto.ProductResponse, 0, len(products)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, p := range products {
		out.Items = append(out.Items, *toProductResponse(p))
	}
	return out, nil
}

// Update aplica cambios parciales al producto.
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Height != nil {
		product.Height = *in.Height
	}
	if in.Width != nil {
		product.Width = *in.Width
	}
	if in.Length != nil {
		product.Length = *in.Length
	}
	if in.PricePerUnit != nil {
		product.PricePerUnit = *in.PricePerUnit
	}
	if in.RetailPrice != nil {
		product.RetailPrice = *in.RetailPrice
	}
	if in.Cepillado != nil {
		product.Cepillado = *in.Cepillado
	}
	product.UpdatedAt = time.Now()

	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		SaleUnit:     p.SaleUnit,
		Height:       p.Height,
		Width:        p.Width,
		Length:       p.Length,
		PricePerUnit: p.PricePerUnit,
		RetailPrice:  p.RetailPrice,
		Stock:        p.Stock,
		Cepillado:    p.Cepillado,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
