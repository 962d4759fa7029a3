package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/maderasur/corralon-api/internal/domain"
	"github.com/maderasur/corralon-api/internal/domain/entity"
)

// Factores de la política comercial del corralón.
// pieFactor convierte alto×ancho×largo a pies tablares para madera cortada
// a medida. planingFactor es el recargo de cepillado (6.6%), aplicado después
// de la fórmula base y siempre recalculado desde la base sin recargo.
var (
	pieFactor     = decimal.RequireFromString("0.2734")
	planingFactor = decimal.RequireFromString("1.066")
	hundred       = decimal.NewFromInt(100)
)

// RoundToHundred redondea al múltiplo de 100 más cercano (half away from
// zero). Es el único punto de redondeo monetario: todas las fórmulas pasan
// por acá para que la granularidad no pueda divergir entre call sites.
func RoundToHundred(v decimal.Decimal) decimal.Decimal {
	return v.Div(hundred).Round(0).Mul(hundred)
}

// Input son los atributos que participan del precio unitario de una línea.
// Para madera vienen del snapshot de la línea (las dimensiones pueden ser
// un corte a medida, no las del catálogo); para ferretería/genérico,
// RetailPrice ya llega resuelto de la cadena legada.
type Input struct {
	Category     string
	SaleUnit     string
	Height       decimal.Decimal
	Width        decimal.Decimal
	Length       decimal.Decimal
	PricePerUnit decimal.Decimal // por pie, por m2 o por unidad
	RetailPrice  decimal.Decimal // ferretería / genérico
	Quantity     int             // participa solo en líneas M2
	Cepillado    bool
}

// FromItem arma el Input desde el snapshot de una línea.
func FromItem(it *entity.OrderItem) Input {
	return Input{
		Category:     it.Category,
		SaleUnit:     it.SaleUnit,
		Height:       it.Height,
		Width:        it.Width,
		Length:       it.Length,
		PricePerUnit: it.PricePerUnit,
		RetailPrice:  it.PricePerUnit,
		Quantity:     it.Quantity,
		Cepillado:    it.Cepillado,
	}
}

// UnitPrice resuelve el precio unitario de una línea según categoría y unidad
// de venta. Siempre devuelve un múltiplo no negativo de 100.
// Entradas indefinidas o no positivas devuelven cero y un ValidationError:
// el caller bloquea el guardado, nunca se acepta en silencio.
func UnitPrice(in Input) (decimal.Decimal, error) {
	base, err := basePrice(in)
	if err != nil {
		return decimal.Zero, err
	}
	if in.Cepillado {
		// El recargo se aplica una única vez sobre la base recién calculada;
		// recalcular una línea parte siempre de la base sin recargo.
		base = RoundToHundred(base.Mul(planingFactor))
	}
	return base, nil
}

func basePrice(in Input) (decimal.Decimal, error) {
	if in.Category != entity.CategoryWood {
		// Ferretería y genéricos venden al precio configurado, resuelto de la
		// cadena legada de campos al cargar el producto, con la misma
		// granularidad de 100 que el resto de las fórmulas.
		if in.RetailPrice.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, domain.Validation("retail_price", "precio de venta no configurado")
		}
		return RoundToHundred(in.RetailPrice), nil
	}

	switch in.SaleUnit {
	case entity.SaleUnitPie:
		if !positive(in.Height, in.Width, in.Length, in.PricePerUnit) {
			return decimal.Zero, domain.Validation("dimensions", "corte volumétrico requiere alto, ancho, largo y precio por pie positivos")
		}
		return RoundToHundred(pieFactor.Mul(in.Height).Mul(in.Width).Mul(in.Length).Mul(in.PricePerUnit)), nil

	case entity.SaleUnitM2:
		// Binding canónico: ancho × largo × cantidad. El alto de un machimbre
		// es su espesor y no participa del área vendida. El precio de la
		// línea ya incluye la cantidad: el agregador no la vuelve a aplicar.
		if !positive(in.Width, in.Length, in.PricePerUnit) || in.Quantity < 1 {
			return decimal.Zero, domain.Validation("dimensions", "panel por área requiere ancho, largo, precio por m2 y cantidad positivos")
		}
		qty := decimal.NewFromInt(int64(in.Quantity))
		return RoundToHundred(in.Width.Mul(in.Length).Mul(qty).Mul(in.PricePerUnit)), nil

	case entity.SaleUnitUnidad, entity.SaleUnitPieza:
		if in.PricePerUnit.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, domain.Validation("price_per_unit", "precio por unidad no positivo")
		}
		return RoundToHundred(in.PricePerUnit), nil
	}

	return decimal.Zero, domain.Validation("sale_unit", "unidad de venta desconocida: "+in.SaleUnit)
}

func positive(vals ...decimal.Decimal) bool {
	for _, v := range vals {
		if v.LessThanOrEqual(decimal.Zero) {
			return false
		}
	}
	return true
}
