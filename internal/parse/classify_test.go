package parse

import (
	"testing"

	"financeiro/internal/core"
)

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantKind    core.EntryKind
		wantKeyword string
	}{
		{"explicit expense", "despesa no mercado", core.Expense, "despesa"},
		{"explicit income", "recebi meu salário", core.Income, "salário"},
		{"income wins over expense", "salário e conta de luz", core.Income, "salário"},
		{"expense keyword only", "aluguel do apartamento", core.Expense, "aluguel"},
		{"no keyword defaults to expense", "qualquer coisa", core.Expense, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, keyword := classifyKind(tt.input)
			if kind != tt.wantKind {
				t.Errorf("classifyKind(%q) kind = %v, want %v", tt.input, kind, tt.wantKind)
			}
			if keyword != tt.wantKeyword {
				t.Errorf("classifyKind(%q) keyword = %q, want %q", tt.input, keyword, tt.wantKeyword)
			}
		})
	}
}

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"almoço no restaurante", "alimentação"},
		{"gasolina do carro", "transporte"},
		{"farmacia remédio", "saúde"},
		{"cinema com amigos", "lazer"},
		{"aluguel de julho", "casa"},
		{"calçado novo", "roupas"},
		{"curso de inglês", "educação"},
		{"aporte em fundos", "investimentos"},
		{"coisas diversas", "outros"},
		// "restaurante" (alimentação) appears before "viagem" (lazer)
		// in table order, so alimentação wins.
		{"restaurante da viagem", "alimentação"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := classifyCategory(tt.input); got != tt.want {
				t.Errorf("classifyCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClassifyMethod(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"paguei no pix", "PIX"},
		{"no cartão de crédito", "Cartão"},
		{"em dinheiro", "Dinheiro"},
		{"via transferencia", "Transferência"},
		{"débito da conta nubank", "Cartão"}, // method table order: Cartão before Conta
		{"sem indicação nenhuma", "Dinheiro"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := classifyMethod(tt.input); got != tt.want {
				t.Errorf("classifyMethod(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
