package document

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Document — непрозрачное дерево upstream-документа. У API нет фиксированной
// схемы: одно и то же логическое поле встречается под разными ключами и на
// разной глубине, поэтому доступ к данным идёт только через путевые аксессоры
// с дефолтами, а не через типизированную структуру.
type Document map[string]interface{}

// Decode разбирает JSON в Document. UseNumber сохраняет длинные идентификаторы
// (spuId, skuId) без потери точности.
func Decode(data []byte) (Document, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Map возвращает вложенный объект по цепочке ключей либо nil.
func (d Document) Map(keys ...string) Document {
	current := d
	for _, key := range keys {
		if current == nil {
			return nil
		}
		next, ok := current[key]
		if !ok {
			return nil
		}
		current = AsDocument(next)
	}
	return current
}

// Slice возвращает вложенный массив либо nil.
func (d Document) Slice(keys ...string) []interface{} {
	if len(keys) == 0 {
		return nil
	}
	parent := d
	if len(keys) > 1 {
		parent = d.Map(keys[:len(keys)-1]...)
	}
	if parent == nil {
		return nil
	}
	value, ok := parent[keys[len(keys)-1]].([]interface{})
	if !ok {
		return nil
	}
	return value
}

// String возвращает строковое представление значения по пути; числа
// форматируются без потери значащих цифр, отсутствующее значение — "".
func (d Document) String(keys ...string) string {
	value, ok := d.lookup(keys)
	if !ok {
		return ""
	}
	return Stringify(value)
}

// Int возвращает целое значение по пути.
func (d Document) Int(keys ...string) (int64, bool) {
	value, ok := d.lookup(keys)
	if !ok {
		return 0, false
	}
	return toInt(value)
}

// Float возвращает числовое значение по пути.
func (d Document) Float(keys ...string) (float64, bool) {
	value, ok := d.lookup(keys)
	if !ok {
		return 0, false
	}
	return toFloat(value)
}

// Has сообщает, присутствует ли непустое значение по пути.
func (d Document) Has(keys ...string) bool {
	value, ok := d.lookup(keys)
	if !ok || value == nil {
		return false
	}
	if s, isStr := value.(string); isStr {
		return strings.TrimSpace(s) != ""
	}
	return true
}

func (d Document) lookup(keys []string) (interface{}, bool) {
	if len(keys) == 0 {
		return nil, false
	}
	parent := d
	if len(keys) > 1 {
		parent = d.Map(keys[:len(keys)-1]...)
	}
	if parent == nil {
		return nil, false
	}
	value, ok := parent[keys[len(keys)-1]]
	return value, ok
}

// AsDocument приводит произвольное значение дерева к Document.
func AsDocument(value interface{}) Document {
	switch typed := value.(type) {
	case Document:
		return typed
	case map[string]interface{}:
		return Document(typed)
	default:
		return nil
	}
}

// Stringify приводит значение листа к строке.
func Stringify(value interface{}) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case json.Number:
		return typed.String()
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return ""
	}
}

func toInt(value interface{}) (int64, bool) {
	switch typed := value.(type) {
	case json.Number:
		n, err := typed.Int64()
		if err != nil {
			// дробное число: усечём через float
			f, ferr := typed.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return n, true
	case float64:
		return int64(typed), true
	case int:
		return int64(typed), true
	case int64:
		return typed, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func toFloat(value interface{}) (float64, bool) {
	switch typed := value.(type) {
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return typed, true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
