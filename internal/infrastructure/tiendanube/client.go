// Package tiendanube es el cliente HTTP de la API de TiendaNube: catálogo de
// productos, stock por variante y detalle de órdenes para los webhooks.
package tiendanube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain/entity"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

const variantsPerPage = 50

// Client cliente autenticado contra una tienda concreta.
type Client struct {
	baseURL     string
	storeID     string
	accessToken string
	userAgent   string
	httpClient  *http.Client
	log         *logger.Logger
}

// NewClient construye el cliente. Acepta baseURL con o sin barra final;
// los paths de cada request ya arrancan con "/".
func NewClient(baseURL, storeID, accessToken, userAgent string, log *logger.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		storeID:     storeID,
		accessToken: accessToken,
		userAgent:   userAgent,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		log:         log,
	}
}

// LocalizedName la API devuelve nombres como mapa idioma→texto o como string
// plano según el recurso.
type LocalizedName map[string]string

// Resolve elige el texto en español si existe, después cualquier variante
// regional, después lo que haya.
func (n LocalizedName) Resolve() string {
	for _, lang := range []string{"es", "es_AR", "es_US", "es_ES"} {
		if text := n[lang]; text != "" {
			return text
		}
	}
	for _, text := range n {
		if text != "" {
			return text
		}
	}
	return "No disponible"
}

type apiProduct struct {
	ID         int64           `json:"id"`
	Name       LocalizedName   `json:"name"`
	Categories []apiCategory   `json:"categories"`
	Attributes []LocalizedName `json:"attributes"`
	Variants   []apiVariant    `json:"variants"`
}

type apiCategory struct {
	Name LocalizedName `json:"name"`
}

type apiVariant struct {
	ID               int64           `json:"id"`
	SKU              string          `json:"sku"`
	Price            string          `json:"price"`
	PromotionalPrice string          `json:"promotional_price"`
	Stock            *int64          `json:"stock"`
	StockManagement  bool            `json:"stock_management"`
	Values           []LocalizedName `json:"values"`
}

// ListVariants recorre el catálogo completo, paginando, y devuelve una
// variante por fila con los precios y descuentos ya resueltos.
func (c *Client) ListVariants() ([]entity.Variant, error) {
	var all []entity.Variant
	for page := 1; ; page++ {
		path := fmt.Sprintf("/%s/products?page=%d&per_page=%d&fields=id,name,variants,categories,attributes",
			c.storeID, page, variantsPerPage)
		var products []apiProduct
		if err := c.get(path, &products); err != nil {
			return nil, err
		}
		if len(products) == 0 {
			break
		}
		for _, product := range products {
			all = append(all, c.flattenProduct(product)...)
		}
		if len(products) < variantsPerPage {
			break
		}
	}
	c.log.Info().Int("variantes", len(all)).Msg("catálogo de TiendaNube descargado")
	return all, nil
}

func (c *Client) flattenProduct(product apiProduct) []entity.Variant {
	category := "General"
	if len(product.Categories) > 0 {
		category = product.Categories[0].Name.Resolve()
	}
	var optionNames [3]string
	for i, attr := range product.Attributes {
		if i >= 3 {
			break
		}
		optionNames[i] = attr.Resolve()
	}

	variants := make([]entity.Variant, 0, len(product.Variants))
	for _, raw := range product.Variants {
		stock := int64(entity.UnlimitedStock)
		if raw.StockManagement {
			stock = 0
			if raw.Stock != nil {
				stock = *raw.Stock
			}
		}
		unitPrice, _ := decimal.NewFromString(raw.Price)
		finalPrice := unitPrice
		discount := decimal.Zero
		discountPct := decimal.Zero
		if promo, err := decimal.NewFromString(raw.PromotionalPrice); err == nil &&
			promo.IsPositive() && promo.LessThan(unitPrice) {
			finalPrice = promo
			discount = unitPrice.Sub(promo)
			discountPct = discount.Div(unitPrice).Mul(decimal.NewFromInt(100))
		}
		var optionValues [3]string
		for i, value := range raw.Values {
			if i >= 3 {
				break
			}
			optionValues[i] = value.Resolve()
		}
		variants = append(variants, entity.Variant{
			Name:         product.Name.Resolve(),
			ProductID:    product.ID,
			VariantID:    raw.ID,
			SKU:          raw.SKU,
			OptionNames:  optionNames,
			OptionValues: optionValues,
			Category:     category,
			Stock:        stock,
			UnitPrice:    unitPrice.Round(2),
			DiscountPct:  discountPct.Round(2),
			Discount:     discount.Round(2),
			FinalPrice:   finalPrice.Round(2),
		})
	}
	return variants
}

// Stock consulta el stock actual de una variante. Devuelve ok=false si la
// tienda no respondió; el valor centinela de stock ilimitado si la variante
// no maneja stock.
func (c *Client) Stock(productID, variantID int64) (int64, bool) {
	path := fmt.Sprintf("/%s/products/%d/variants/%d", c.storeID, productID, variantID)
	var variant apiVariant
	if err := c.get(path, &variant); err != nil {
		c.log.Error().Err(err).Int64("variante", variantID).Msg("no se pudo consultar stock en tiempo real")
		return 0, false
	}
	if !variant.StockManagement {
		return entity.UnlimitedStock, true
	}
	if variant.Stock == nil {
		return 0, true
	}
	return *variant.Stock, true
}

// PushStock fija el stock de una variante en la tienda.
func (c *Client) PushStock(productID, variantID, newLevel int64) error {
	path := fmt.Sprintf("/%s/products/%d/variants/%d", c.storeID, productID, variantID)
	payload := map[string]int64{"stock": newLevel}
	if err := c.put(path, payload); err != nil {
		return err
	}
	c.log.Info().Int64("variante", variantID).Int64("stock", newLevel).Msg("stock actualizado en TiendaNube")
	return nil
}

// Order una orden con lo mínimo que necesita el registro de ventas.
type Order struct {
	ID           int64              `json:"id"`
	Customer     OrderCustomer      `json:"customer"`
	Products     []OrderProduct     `json:"products"`
	Transactions []OrderTransaction `json:"transactions"`
}

// OrderCustomer comprador de la orden.
type OrderCustomer struct {
	Name string `json:"name"`
}

// OrderProduct renglón de producto dentro de la orden.
type OrderProduct struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// OrderTransaction pago asociado a la orden.
type OrderTransaction struct {
	CapturedAmount string `json:"captured_amount"`
}

// CapturedTotal monto cobrado de la primera transacción de la orden; cero si
// la orden no tiene transacciones.
func (o Order) CapturedTotal() decimal.Decimal {
	if len(o.Transactions) == 0 {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(o.Transactions[0].CapturedAmount)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// FetchOrder trae el detalle completo de una orden.
func (c *Client) FetchOrder(orderID int64) (*Order, error) {
	if orderID == 0 {
		return nil, fmt.Errorf("id de orden vacío: %w", domain.ErrValidation)
	}
	var order Order
	if err := c.get(fmt.Sprintf("/%s/orders/%d", c.storeID, orderID), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) get(path string, out any) error {
	return c.do(http.MethodGet, path, nil, out)
}

func (c *Client) put(path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serializando payload: %w", err)
	}
	return c.do(http.MethodPut, path, body, nil)
}

func (c *Client) do(method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("armando request: %w", err)
	}
	req.Header.Set("Authentication", "bearer "+c.accessToken)
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tiendanube: %v: %w", err, domain.ErrNotConnected)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("tiendanube %s: %w", path, domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tiendanube devolvió %d: %s: %w",
			resp.StatusCode, string(raw), domain.ErrNotConnected)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decodificando respuesta de tiendanube: %w", err)
	}
	return nil
}

// StoreIDFromConfig normaliza el id de tienda configurado, que puede venir
// como número o como string.
func StoreIDFromConfig(raw string) (string, error) {
	if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
		return "", fmt.Errorf("store id %q inválido: %w", raw, domain.ErrValidation)
	}
	return raw, nil
}
