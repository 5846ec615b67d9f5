package domain

import "strings"

// Provider — идентификатор внешнего поставщика дропшиппинга.
type Provider string

const (
	ProviderPrintful       Provider = "printful"
	ProviderPrintify       Provider = "printify"
	ProviderCJDropshipping Provider = "cjdropshipping"
	// ProviderMock отдаёт детерминированные синтетические данные без сети.
	ProviderMock Provider = "mock"
)

func (p Provider) String() string {
	return string(p)
}

// NormalizeProvider приводит идентификатор к каноническому виду.
func NormalizeProvider(raw string) Provider {
	return Provider(strings.ToLower(strings.TrimSpace(raw)))
}
