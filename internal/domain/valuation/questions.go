// Package valuation contiene las reglas de valoración en aduana: la tabla de
// 17 preguntas regulatorias (Acuerdo del Valor del GATT, Arts. 1 y 8, y
// RG AFIP 2010/2006), el registro de respuestas con su ciclo de vida y el
// calculador del valor en aduana.
//
// Todo el paquete es puro: sin I/O ni estado compartido.
package valuation

// TableVersion identifica la versión de la tabla de preguntas. Cambia cuando
// cambia la norma, nunca en tiempo de ejecución.
const TableVersion = "RG2010-2006/v1"

// Category clasifica cada pregunta regulatoria.
type Category string

const (
	CategoryGeneral   Category = "general"   // solo cumplimiento, sin monto
	CategoryAddition  Category = "addition"  // ajuste a incluir (Art. 8)
	CategoryDeduction Category = "deduction" // concepto a deducir
)

// RegulatoryQuestion es una entrada de la tabla estática.
type RegulatoryQuestion struct {
	ID             string   `json:"id"`
	Ordinal        int      `json:"ordinal"` // numeración oficial 1–17 para pantalla y citas
	Category       Category `json:"category"`
	RequiresAmount bool     `json:"requires_amount"`
	Title          string   `json:"title"`
	Legal          string   `json:"legal"` // referencia normativa
}

// questions reproduce la declaración del valor. q13 y q14 conservan el cruce
// histórico id/ordinal de la tabla original: q13 se muestra como 14 y q14 como 13.
var questions = [...]RegulatoryQuestion{
	{ID: "q1", Ordinal: 1, Category: CategoryGeneral,
		Title: "¿Existe vinculación entre comprador y vendedor?",
		Legal: "AVA Art. 15.4"},
	{ID: "q2", Ordinal: 2, Category: CategoryGeneral,
		Title: "¿La vinculación influyó en el precio pagado o por pagar?",
		Legal: "AVA Art. 1.2.a"},
	{ID: "q3", Ordinal: 3, Category: CategoryGeneral,
		Title: "¿Existen restricciones a la cesión o utilización de las mercaderías por el comprador?",
		Legal: "AVA Art. 1.1.a"},
	{ID: "q4", Ordinal: 4, Category: CategoryGeneral,
		Title: "¿La venta o el precio dependen de condiciones o contraprestaciones cuyo valor no pueda determinarse?",
		Legal: "AVA Art. 1.1.b"},
	{ID: "q5", Ordinal: 5, Category: CategoryAddition, RequiresAmount: true,
		Title: "Comisiones y gastos de corretaje, salvo las comisiones de compra",
		Legal: "AVA Art. 8.1.a.i"},
	{ID: "q6", Ordinal: 6, Category: CategoryAddition, RequiresAmount: true,
		Title: "Costo de los envases o contenedores que se consideran un todo con la mercadería",
		Legal: "AVA Art. 8.1.a.ii"},
	{ID: "q7", Ordinal: 7, Category: CategoryAddition, RequiresAmount: true,
		Title: "Gastos de embalaje, tanto por mano de obra como por materiales",
		Legal: "AVA Art. 8.1.a.iii"},
	{ID: "q8", Ordinal: 8, Category: CategoryAddition, RequiresAmount: true,
		Title: "Materiales, piezas y elementos incorporados, suministrados por el comprador",
		Legal: "AVA Art. 8.1.b.i"},
	{ID: "q9", Ordinal: 9, Category: CategoryAddition, RequiresAmount: true,
		Title: "Herramientas, matrices y moldes utilizados en la producción, suministrados por el comprador",
		Legal: "AVA Art. 8.1.b.ii"},
	{ID: "q10", Ordinal: 10, Category: CategoryAddition, RequiresAmount: true,
		Title: "Materiales consumidos en la producción, suministrados por el comprador",
		Legal: "AVA Art. 8.1.b.iii"},
	{ID: "q11", Ordinal: 11, Category: CategoryAddition, RequiresAmount: true,
		Title: "Ingeniería, creación, perfeccionamiento, trabajos artísticos, diseños, planos y croquis",
		Legal: "AVA Art. 8.1.b.iv"},
	{ID: "q12", Ordinal: 12, Category: CategoryAddition, RequiresAmount: true,
		Title: "Cánones y derechos de licencia relacionados con la mercadería",
		Legal: "AVA Art. 8.1.c"},
	{ID: "q13", Ordinal: 14, Category: CategoryAddition, RequiresAmount: true,
		Title: "Gastos de transporte, carga, descarga, manipulación y seguro hasta el lugar de importación",
		Legal: "AVA Art. 8.2 / RG 2010/2006"},
	{ID: "q14", Ordinal: 13, Category: CategoryAddition, RequiresAmount: true,
		Title: "Producto de la reventa, cesión o utilización posterior que revierta al vendedor",
		Legal: "AVA Art. 8.1.d"},
	{ID: "q15", Ordinal: 15, Category: CategoryDeduction, RequiresAmount: true,
		Title: "Gastos de construcción, armado, montaje, mantenimiento o asistencia técnica posteriores a la importación",
		Legal: "AVA Nota al Art. 1, párr. 3.a"},
	{ID: "q16", Ordinal: 16, Category: CategoryDeduction, RequiresAmount: true,
		Title: "Costo del transporte posterior a la importación",
		Legal: "AVA Nota al Art. 1, párr. 3.b"},
	{ID: "q17", Ordinal: 17, Category: CategoryDeduction, RequiresAmount: true,
		Title: "Intereses por financiación de la compra, pactados por escrito",
		Legal: "Decisión 3.1 del Comité de Valoración / RG 2010/2006"},
}

// QuestionCount es la cantidad fija de preguntas.
const QuestionCount = len(questions)

var questionsByID = func() map[string]RegulatoryQuestion {
	m := make(map[string]RegulatoryQuestion, len(questions))
	for _, q := range questions {
		m[q.ID] = q
	}
	return m
}()

// Questions devuelve una copia de la tabla en orden de id.
func Questions() []RegulatoryQuestion {
	out := make([]RegulatoryQuestion, len(questions))
	copy(out, questions[:])
	return out
}

// QuestionByID busca una pregunta por id.
func QuestionByID(id string) (RegulatoryQuestion, bool) {
	q, ok := questionsByID[id]
	return q, ok
}

// QuestionsByCategory filtra la tabla por categoría.
func QuestionsByCategory(c Category) []RegulatoryQuestion {
	var out []RegulatoryQuestion
	for _, q := range questions {
		if q.Category == c {
			out = append(out, q)
		}
	}
	return out
}
