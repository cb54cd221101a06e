package scheduler

import (
	"fmt"
	"strings"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/reconciler"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain/entity"
)

// FormatSweepMessage arma el resumen del barrido en Markdown de Telegram.
// Devuelve cadena vacía cuando no hay nada que informar.
func FormatSweepMessage(report *reconciler.SweepReport) string {
	if report == nil {
		return ""
	}
	if report.Matured == 0 && len(report.Conciliated) == 0 && len(report.Upcoming) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("*Barrido de conciliación*\n")

	if report.Matured > 0 {
		fmt.Fprintf(&b, "\n%d instrumento(s) pasaron a estado PAGO.\n", report.Matured)
	}

	if len(report.Conciliated) > 0 {
		b.WriteString("\n*Conciliados hoy:*\n")
		for _, c := range report.Conciliated {
			fmt.Fprintf(&b, "• %s `%s` de %s por $%s\n",
				kindLabel(c.Kind), c.ID, c.Counterparty, c.Amount.Round(2).String())
		}
	}

	if len(report.Upcoming) > 0 {
		b.WriteString("\n*Próximos vencimientos:*\n")
		for _, group := range report.Upcoming {
			fmt.Fprintf(&b, "\n📅 %s\n", group.Date.Format(entity.DueDateLayout))
			for _, item := range group.Items {
				fmt.Fprintf(&b, "• %s `%s` de %s por $%s\n",
					kindLabel(item.Kind), item.ID, item.Counterparty, item.Amount.Round(2).String())
			}
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func kindLabel(kind string) string {
	switch kind {
	case "cheque":
		return "Cheque"
	case "pago_futuro":
		return "Pago futuro"
	default:
		return kind
	}
}
