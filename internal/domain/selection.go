package domain

import (
	"net/url"
	"strings"
)

type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Selection son las opciones elegidas por el usuario, en el orden del query string.
type Selection []SelectedOption

// ParseSelection arma la selección a partir del query crudo. Se usa el query
// crudo porque url.Values pierde el orden. Nombres repetidos: gana el último
// valor y se conserva la posición de la primera aparición.
func ParseSelection(rawQuery string) Selection {
	sel := Selection{}
	pos := map[string]int{}
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		name, err := url.QueryUnescape(k)
		if err != nil || strings.TrimSpace(name) == "" {
			continue
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		if i, ok := pos[name]; ok {
			sel[i].Value = value
			continue
		}
		pos[name] = len(sel)
		sel = append(sel, SelectedOption{Name: name, Value: value})
	}
	return sel
}

// Get devuelve el valor elegido para name.
func (s Selection) Get(name string) (string, bool) {
	for _, so := range s {
		if so.Name == name {
			return so.Value, true
		}
	}
	return "", false
}

// With devuelve una copia con name=value reemplazado o agregado al final.
func (s Selection) With(name, value string) Selection {
	out := make(Selection, 0, len(s)+1)
	replaced := false
	for _, so := range s {
		if so.Name == name {
			so.Value = value
			replaced = true
		}
		out = append(out, so)
	}
	if !replaced {
		out = append(out, SelectedOption{Name: name, Value: value})
	}
	return out
}

// Encode arma el query string respetando el orden de la selección.
func (s Selection) Encode() string {
	parts := make([]string, 0, len(s))
	for _, so := range s {
		parts = append(parts, url.QueryEscape(so.Name)+"="+url.QueryEscape(so.Value))
	}
	return strings.Join(parts, "&")
}
