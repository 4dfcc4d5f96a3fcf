package domain

const (
	MetafieldNamespace         = "furniture"
	MetafieldAdditionalFeature = "additional_features"
	MetafieldManufacturerInfo  = "manufacturer_info"
)

type Metafield struct {
	Namespace string      `json:"namespace,omitempty"`
	Key       string      `json:"key"`
	Value     string      `json:"value"`
	Type      string      `json:"type"`
	Reference *Metaobject `json:"reference,omitempty"`
}

type Metaobject struct {
	ID     string            `json:"id"`
	Handle string            `json:"handle"`
	Fields []MetaobjectField `json:"fields"`
}

type MetaobjectField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

// Metafield busca por key; si hay repetidos gana el primero.
func (p *Product) Metafield(key string) (*Metafield, bool) {
	if p == nil {
		return nil, false
	}
	for i := range p.Metafields {
		if p.Metafields[i].Key == key {
			return &p.Metafields[i], true
		}
	}
	return nil, false
}

// Field devuelve el valor de un campo de la referencia.
func (m *Metafield) Field(key string) (string, bool) {
	if m == nil || m.Reference == nil {
		return "", false
	}
	for _, f := range m.Reference.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}
