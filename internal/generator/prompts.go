// ABOUTME: System and user prompt templates for routine generation and editing
// ABOUTME: Both profiles demand the MENSAJE/JSON response layout the completion parser reads
package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harper/wodsmith/internal/models"
)

const responseFormat = `FORMATO DE RESPUESTA:
Respondé EXACTAMENTE con este formato, sin texto antes ni después:

MENSAJE: <mensaje breve para el atleta>

JSON:
<rutina completa en JSON>`

const schemaExample = `{
  "semana_id": "semana_YYYY_WNN",
  "fecha_inicio": "YYYY-MM-DD",
  "dias": [
    {
      "dia": "Lunes",
      "fecha": "YYYY-MM-DD",
      "tipo_bloque_principal": "FUERZA",
      "core": {"rondas": 3, "ejercicios": [{"nombre": "...", "reps": "..."}]},
      "bloque_principal": {
        "tipo": "FUERZA",
        "descripcion": "...",
        "movimiento": "...",
        "sets": 5,
        "reps": "5",
        "variante_principiante": "..."
      },
      "wod": {
        "formato": "AMRAP",
        "duracion": 14,
        "rondas": null,
        "time_cap": null,
        "ejercicios": [{"nombre": "...", "reps": "...", "escala": "..."}]
      },
      "accesorios": {"rondas": 3, "ejercicios": [{"nombre": "...", "reps": "..."}]},
      "metadata": {
        "grupos_musculares": ["..."],
        "movimientos_olimpicos": [],
        "intensidad_estimada": "alta",
        "patron_movimiento_fuerza": "sentadilla"
      }
    }
  ]
}`

// GenerationSystemPrompt is the coach profile for new weeks
var GenerationSystemPrompt = `Sos un coach de CrossFit con experiencia programando semanas para atletas de todos los niveles.
Generá una semana NUEVA tomando como base las rutinas de referencia del contexto.

REGLAS:
1. Cada día respeta el orden CORE, BLOQUE PRINCIPAL (FUERZA u OLY), WOD, ACCESORIOS.
2. El bloque principal siempre incluye una variante para principiantes.
3. Variá el formato del WOD entre días (AMRAP, For Time, EMOM, Rounds, Escalera).
4. Alterná días de FUERZA y OLY como en las referencias.
5. No repitas el movimiento principal en días consecutivos.
6. Cuidá el balance semanal entre tren superior, tren inferior, tirón y empuje.
7. Introducí variaciones respecto de las referencias en lugar de copiarlas.

` + responseFormat + `

En MENSAJE explicá en 2 o 3 oraciones la semana generada y qué cambiaste respecto de las referencias.
El JSON sigue esta estructura:
` + schemaExample

// EditSystemPrompt is the coach profile for corrections to an existing week
var EditSystemPrompt = `Sos un coach de CrossFit. Tenés que MODIFICAR una rutina semanal existente según la corrección del atleta.

REGLAS:
1. Cambiá únicamente lo que se pide.
2. Todo lo demás queda idéntico, incluido semana_id.
3. Mantené la estructura y el nivel de detalle de la rutina original.
4. Si el cambio altera el balance de la semana, mencionálo en el mensaje.

` + responseFormat + `

En MENSAJE explicá en 1 o 2 oraciones qué cambiaste.`

func generationPrompt(referenceContext, request, startDate, weekID string) string {
	var b strings.Builder
	b.WriteString("RUTINAS DE REFERENCIA (usalas como base para la nueva semana):\n")
	b.WriteString(referenceContext)
	b.WriteString("\n\nPEDIDO DEL ATLETA:\n")
	b.WriteString(request)
	fmt.Fprintf(&b, "\n\nFECHA DE INICIO DE LA SEMANA: %s\n", startDate)
	if weekID != "" {
		fmt.Fprintf(&b, "SEMANA_ID: %s\n", weekID)
	}
	b.WriteString("\nGenerá la semana completa de 5 días, de Lunes a Viernes, siguiendo las instrucciones del sistema.")
	return b.String()
}

func editPrompt(current *models.WeekRoutine, correction string) (string, error) {
	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode current routine: %w", err)
	}

	var b strings.Builder
	b.WriteString("RUTINA ACTUAL (modificá solo lo que se pide):\n")
	b.Write(data)
	b.WriteString("\n\nCORRECCIÓN DEL ATLETA:\n")
	b.WriteString(correction)
	b.WriteString("\n\nAplicá SOLO esa corrección y devolvé la rutina completa.")
	return b.String(), nil
}
