package domain

// MatchVariant busca la variante que satisface la selección, igual que
// variantBySelectedOptions del backend. Las entradas cuyo nombre no es una
// opción del producto se ignoran. Con selección completa gana la primera
// variante que coincide; con selección parcial sólo si la coincidencia es única.
func MatchVariant(p *Product, sel Selection) (*Variant, bool) {
	if p == nil || len(p.Variants) == 0 {
		return nil, false
	}
	known := map[string]struct{}{}
	for _, n := range p.OptionNames() {
		known[n] = struct{}{}
	}
	wanted := make(Selection, 0, len(sel))
	for _, so := range sel {
		if _, ok := known[so.Name]; ok {
			wanted = append(wanted, so)
		}
	}
	if len(wanted) == 0 {
		return nil, false
	}

	var found *Variant
	matches := 0
	for i := range p.Variants {
		if !satisfies(&p.Variants[i], wanted) {
			continue
		}
		if found == nil {
			found = &p.Variants[i]
		}
		matches++
	}
	if found == nil {
		return nil, false
	}
	if len(wanted) < len(known) && matches > 1 {
		return nil, false
	}
	return found, true
}

func satisfies(v *Variant, sel Selection) bool {
	for _, so := range sel {
		val, ok := v.OptionValue(so.Name)
		if !ok || val != so.Value {
			return false
		}
	}
	return true
}

// ResolveVariant elige la variante a mostrar: el match del backend y si no
// hay, la primera variante del producto. Sin variantes el producto no se puede
// comprar.
func ResolveVariant(p *Product) (*Variant, error) {
	if p == nil {
		return nil, ErrNotFound
	}
	if p.SelectedVariant != nil {
		return p.SelectedVariant, nil
	}
	if len(p.Variants) == 0 {
		return nil, ErrNotOrderable
	}
	return &p.Variants[0], nil
}
