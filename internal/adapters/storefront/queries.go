package storefront

// ProductQuery trae el shop, el producto, la variante que coincide con la
// selección y la primera variante como fallback.
const ProductQuery = `
query product($handle: String!, $selectedOptions: [SelectedOptionInput!]!) {
  shop {
    primaryDomain {
      url
    }
  }
  product(handle: $handle) {
    id
    title
    handle
    vendor
    description
    descriptionHtml
    metafields(
      identifiers: [
        { key: "additional_features", namespace: "furniture" }
        { key: "manufacturer_info", namespace: "furniture" }
      ]
    ) {
      namespace
      key
      value
      type
      reference {
        ... on Metaobject {
          id
          handle
          fields {
            key
            value
            type
          }
        }
      }
    }
    featuredImage {
      ...ImageFields
    }
    options {
      name
      optionValues {
        name
      }
    }
    selectedVariant: variantBySelectedOptions(selectedOptions: $selectedOptions) {
      ...VariantFields
    }
    variants(first: 1) {
      nodes {
        ...VariantFields
      }
    }
  }
}
` + variantFragment + imageFragment

// ProductVariantsQuery trae todas las variantes (para la exportación).
const ProductVariantsQuery = `
query productVariants($handle: String!, $first: Int!, $after: String) {
  product(handle: $handle) {
    id
    variants(first: $first, after: $after) {
      pageInfo {
        hasNextPage
        endCursor
      }
      nodes {
        ...VariantFields
      }
    }
  }
}
` + variantFragment + imageFragment

const variantFragment = `
fragment VariantFields on ProductVariant {
  id
  title
  availableForSale
  sku
  selectedOptions {
    name
    value
  }
  image {
    ...ImageFields
  }
  price {
    amount
    currencyCode
  }
  compareAtPrice {
    amount
    currencyCode
  }
  unitPrice {
    amount
    currencyCode
  }
  product {
    title
    handle
  }
}
`

const imageFragment = `
fragment ImageFields on Image {
  id
  url
  altText
  width
  height
}
`

const cartFragment = `
fragment CartFields on Cart {
  id
  checkoutUrl
  totalQuantity
  lines(first: 100) {
    nodes {
      id
      quantity
      merchandise {
        ... on ProductVariant {
          id
          title
          product {
            title
          }
        }
      }
      cost {
        totalAmount {
          amount
          currencyCode
        }
      }
    }
  }
}
`

const CartCreateMutation = `
mutation cartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart {
      ...CartFields
    }
    userErrors {
      field
      message
    }
  }
}
` + cartFragment

const CartLinesAddMutation = `
mutation cartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart {
      ...CartFields
    }
    userErrors {
      field
      message
    }
  }
}
` + cartFragment

const CartQuery = `
query cart($cartId: ID!) {
  cart(id: $cartId) {
    ...CartFields
  }
}
` + cartFragment
