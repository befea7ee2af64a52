package parse

import (
	"strings"

	"financeiro/internal/core"
)

// incomeKeywords is checked before expenseKeywords: income wins when a
// text mentions both.
var incomeKeywords = []string{
	"receita", "salário", "salario", "renda", "entrada", "ganho",
	"bônus", "bonus", "freelance", "venda", "investimento",
	"dividendos", "juros", "reembolso",
}

var expenseKeywords = []string{
	"despesa", "gasto", "compra", "pagamento", "conta", "aluguel",
	"supermercado", "combustível", "combustivel", "gasolina",
	"transporte", "alimentação", "alimentacao", "lanche", "jantar",
	"almoço", "almoco", "café", "cafe", "farmácia", "farmacia",
	"medicamento", "roupa", "calçado", "calcado", "lazer", "cinema",
	"teatro", "restaurante", "bar", "shopping", "internet", "telefone",
	"energia", "água", "agua",
}

// categoryTable is evaluated in declaration order with first-match-wins
// semantics. Keep it a slice: the order is the tie-break contract, not an
// optimization target.
var categoryTable = []struct {
	Name     string
	Keywords []string
}{
	{"alimentação", []string{"alimentação", "alimentacao", "comida", "lanche", "jantar", "almoço", "almoco", "café", "cafe", "restaurante", "bar"}},
	{"transporte", []string{"transporte", "combustível", "combustivel", "gasolina", "uber", "taxi", "ônibus", "onibus", "metro"}},
	{"saúde", []string{"saúde", "saude", "farmácia", "farmacia", "medicamento", "médico", "medico", "hospital", "terapia"}},
	{"lazer", []string{"lazer", "cinema", "teatro", "shopping", "viagem", "férias", "ferias"}},
	{"casa", []string{"casa", "aluguel", "energia", "água", "agua", "internet", "telefone"}},
	{"roupas", []string{"roupa", "calçado", "calcado", "vestuário", "vestuario"}},
	{"educação", []string{"educação", "educacao", "curso", "livro", "escola", "faculdade"}},
	{"investimentos", []string{"investimento", "poupança", "poupanca", "ações", "acoes", "fundos"}},
}

var methodTable = []struct {
	Name     string
	Keywords []string
}{
	{"Dinheiro", []string{"dinheiro", "cash", "especie", "espécie"}},
	{"PIX", []string{"pix"}},
	{"Cartão", []string{"cartão", "cartao", "credito", "crédito", "debito", "débito", "visa", "mastercard"}},
	{"Transferência", []string{"transferencia", "transferência", "ted", "doc"}},
	{"Conta", []string{"conta", "corrente", "poupança", "poupanca", "nubank", "itau", "bradesco", "caixa"}},
}

// classifyKind resolves the transaction kind from lowercased text and
// returns the keyword that decided it, so the interpreter can strip it
// from the description. An empty keyword means the expense default was
// applied.
func classifyKind(lower string) (core.EntryKind, string) {
	for _, kw := range incomeKeywords {
		if strings.Contains(lower, kw) {
			return core.Income, kw
		}
	}
	for _, kw := range expenseKeywords {
		if strings.Contains(lower, kw) {
			return core.Expense, kw
		}
	}
	return core.Expense, ""
}

func classifyCategory(lower string) string {
	for _, cat := range categoryTable {
		for _, kw := range cat.Keywords {
			if strings.Contains(lower, kw) {
				return cat.Name
			}
		}
	}
	return core.FallbackCategory
}

func classifyMethod(lower string) string {
	for _, m := range methodTable {
		for _, kw := range m.Keywords {
			if strings.Contains(lower, kw) {
				return m.Name
			}
		}
	}
	return core.DefaultMethodName
}
