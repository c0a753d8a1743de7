package token

type ValueGenerator interface {
	GenerateTokenValue() Value
}
