package domain

// SheetCounts holds the category counts produced by classifying one schedule worksheet.
type SheetCounts struct {
	Programados int `json:"programados"`
	Ejecutados  int `json:"ejecutados"`
	Fallidos    int `json:"fallidos"`
	Relanzados  int `json:"relanzados"`
	Gestionados int `json:"gestionados"`
	Q           int `json:"q"` // rows carrying an ITSM ticket
}

// Add returns the field-wise sum of c and o.
func (c SheetCounts) Add(o SheetCounts) SheetCounts {
	return SheetCounts{
		Programados: c.Programados + o.Programados,
		Ejecutados:  c.Ejecutados + o.Ejecutados,
		Fallidos:    c.Fallidos + o.Fallidos,
		Relanzados:  c.Relanzados + o.Relanzados,
		Gestionados: c.Gestionados + o.Gestionados,
		Q:           c.Q + o.Q,
	}
}

// ScheduleRow is the per-platform result for one scheduling period.
type ScheduleRow struct {
	Platform         string  `json:"platform"`
	Programados      int     `json:"programados" validate:"min=0"`
	Ejecutados       int     `json:"ejecutados" validate:"min=0"`
	Fallidos         int     `json:"fallidos" validate:"min=0"`
	Relanzados       int     `json:"relanzados" validate:"min=0"`
	Q                int     `json:"q" validate:"min=0"`
	Gestionados      int     `json:"gestionados" validate:"min=0"`
	KPIOperacion     float64 `json:"kpi_operacion"`
	PctRelanzamiento float64 `json:"pct_relanzamiento"`
	GestionFallidos  float64 `json:"gestion_fallidos"`
}

// ScheduleTotals sums the rows of a ScheduleReport. The general percentages are
// recomputed from the summed counts, never averaged from the row percentages.
type ScheduleTotals struct {
	Programados            int     `json:"programados"`
	Ejecutados             int     `json:"ejecutados"`
	Fallidos               int     `json:"fallidos"`
	Relanzados             int     `json:"relanzados"`
	Q                      int     `json:"q"`
	Gestionados            int     `json:"gestionados"`
	KPIOperacionGeneral    float64 `json:"kpi_operacion_general"`
	PctRelanzadosGeneral   float64 `json:"pct_relanzados_general"`
	GestionFallidosGeneral float64 `json:"kpi_gestion_fallidos_general"`
}

// ScheduleReport is the monthly schedule aggregate. Rows follow the sheet mapping order.
type ScheduleReport struct {
	PeriodName string         `json:"period_name"`
	Rows       []ScheduleRow  `json:"rows"`
	Totals     ScheduleTotals `json:"totals"`
}
