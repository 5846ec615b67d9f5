package provider

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

var (
	numberRun = regexp.MustCompile(`\d+(?:\.\d+)?`)
	// В остатках знак сохраняется: "-3" у поставщика значит перепродажу, а не 3 штуки.
	stockRun = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

	// maxPrice — верхняя граница NUMERIC(12,2) в каталоге.
	maxPrice = decimal.RequireFromString("9999999999.99")
)

// ParsePrice приводит цену поставщика к неотрицательному decimal с точностью до центов.
// Строки очищаются от валютных символов и разделителей тысяч; берётся первое число,
// так что "$19.99 USD" -> 19.99, а диапазон "9.66 -- 12.10" -> 9.66. Нет цифр: 0.
func ParsePrice(v any) decimal.Decimal {
	d, ok := parseDecimalValue(v)
	if !ok || d.IsNegative() {
		return decimal.Zero
	}
	d = d.Round(2)
	if d.GreaterThan(maxPrice) {
		return decimal.Zero
	}
	return d
}

func parseDecimalValue(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case string:
		return parseNumericString(val)
	default:
		return decimal.Zero, false
	}
}

// parseNumericString вытаскивает первое число из строки. Знак минуса отбрасывается.
func parseNumericString(s string) (decimal.Decimal, bool) {
	match := numberRun.FindString(strings.ReplaceAll(s, ",", ""))
	if match == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseStock приводит остаток к неотрицательному целому; отсутствующее или нечитаемое значение -> fallback.
func ParseStock(v any, fallback int) int {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return clampStock(n)
		}
		if f, err := val.Float64(); err == nil {
			return clampStockFloat(f)
		}
	case float64:
		return clampStockFloat(val)
	case int:
		return clampStock(int64(val))
	case int64:
		return clampStock(val)
	case string:
		match := stockRun.FindString(strings.ReplaceAll(val, ",", ""))
		if match == "" {
			return fallback
		}
		if f, err := strconv.ParseFloat(match, 64); err == nil {
			return clampStockFloat(f)
		}
	}

	return fallback
}

// clampStock держит остаток в пределах [0, MaxInt32]: столбец stock_level INTEGER.
func clampStock(n int64) int {
	switch {
	case n < 0:
		return 0
	case n > math.MaxInt32:
		return math.MaxInt32
	}
	return int(n)
}

func clampStockFloat(f float64) int {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > math.MaxInt32:
		return math.MaxInt32
	}
	return int(f)
}

// ParseDecimal разбирает необязательную положительную величину (вес, габариты). Иначе nil.
func ParseDecimal(v any) *decimal.Decimal {
	d, ok := parseDecimalValue(v)
	if !ok || !d.IsPositive() {
		return nil
	}
	return &d
}

// DedupeImages убирает пустые и повторные URL, сохраняя порядок первого появления.
func DedupeImages(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// SplitName делит полное имя: первый токен это имя, остальное фамилия.
func SplitName(full string) (first, last string) {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// normalizeLabel приводит подпись категории поставщика к ключу поиска.
func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}

// normalizeTags чистит теги и убирает повторы.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(norm.NFKC.String(t))
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// categoryTable хранит двустороннюю карту внутренней таксономии на категории поставщика.
type categoryTable struct {
	toExternal   map[domain.Category]string
	fromExternal map[string]domain.Category
}

func newCategoryTable(toExternal map[domain.Category]string, labels map[string]domain.Category) categoryTable {
	from := make(map[string]domain.Category, len(labels)+len(toExternal))
	for c, ext := range toExternal {
		from[normalizeLabel(ext)] = c
	}
	for label, c := range labels {
		from[normalizeLabel(label)] = c
	}
	return categoryTable{toExternal: toExternal, fromExternal: from}
}

func (t categoryTable) external(c domain.Category) (string, bool) {
	ext, ok := t.toExternal[c]
	return ext, ok
}

// internal никогда не ошибается: неизвестное и пустое -> general.
func (t categoryTable) internal(raw string) domain.Category {
	if c, ok := t.fromExternal[normalizeLabel(raw)]; ok {
		return c
	}
	return domain.CategoryGeneral
}

// object — JSON-объект с ленивым разбором полей. Поля, которые не удалось разобрать,
// читаются как отсутствующие.
type object map[string]json.RawMessage

// parseObject разбирает JSON-объект; при ошибке возвращает пустой объект.
func parseObject(raw []byte) object {
	var o object
	if err := json.Unmarshal(raw, &o); err != nil || o == nil {
		return object{}
	}
	return o
}

// parseObjects разбирает массив объектов, пропуская элементы, которые объектами не являются.
func parseObjects(raw json.RawMessage) []object {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	out := make([]object, 0, len(items))
	for _, item := range items {
		var o object
		if err := json.Unmarshal(item, &o); err != nil || o == nil {
			continue
		}
		out = append(out, o)
	}
	return out
}

// value декодирует поле в any, числа остаются json.Number.
func (o object) value(key string) any {
	raw, ok := o[key]
	if !ok {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func (o object) str(key string) string {
	return str(o.value(key))
}

func (o object) boolean(key string) (bool, bool) {
	b, ok := o.value(key).(bool)
	return b, ok
}

func (o object) obj(key string) object {
	raw, ok := o[key]
	if !ok {
		return object{}
	}
	return parseObject(raw)
}

func (o object) list(key string) []object {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	return parseObjects(raw)
}

func (o object) strings(key string) []string {
	switch v := o.value(key).(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := str(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}

// raw возвращает поле без изменений (варианты товара передаются как есть).
func (o object) raw(key string) json.RawMessage {
	raw, ok := o[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	return raw
}

func str(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return ""
	}
}

// mustJSON кодирует тело запроса; при ошибке пустой объект.
func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}
