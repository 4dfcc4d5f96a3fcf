package domain

import "github.com/shopspring/decimal"

func usd(s string) Money {
	return Money{Amount: decimal.RequireFromString(s), CurrencyCode: "USD"}
}

func oakChair() *Product {
	return &Product{
		ID:     "gid://shopify/Product/1",
		Handle: "oak-chair",
		Title:  "Oak Chair",
		Options: []Option{
			{Name: "Color", Values: []string{"Natural", "Walnut"}},
			{Name: "Size", Values: []string{"Small", "Large"}},
		},
		Variants: []Variant{
			{ID: "gid://shopify/ProductVariant/1", AvailableForSale: true, Price: usd("120.00"),
				SelectedOptions: []SelectedOption{{"Color", "Natural"}, {"Size", "Small"}}},
			{ID: "gid://shopify/ProductVariant/2", AvailableForSale: true, Price: usd("140.00"),
				SelectedOptions: []SelectedOption{{"Color", "Natural"}, {"Size", "Large"}}},
			{ID: "gid://shopify/ProductVariant/3", AvailableForSale: false, Price: usd("130.00"),
				SelectedOptions: []SelectedOption{{"Color", "Walnut"}, {"Size", "Small"}}},
			{ID: "gid://shopify/ProductVariant/4", AvailableForSale: true, Price: usd("150.00"),
				SelectedOptions: []SelectedOption{{"Color", "Walnut"}, {"Size", "Large"}}},
		},
	}
}
