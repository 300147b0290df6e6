package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/liquidation-engine/internal/domain/liquidation"
)

var (
	headerEjercicioRe    = regexp.MustCompile(`EJERCICIO\s+(\d{4})`)
	headerMandamientoRe  = regexp.MustCompile(`Mandamiento de pago:\s*([\d/]+)`)
	headerFechaRe        = regexp.MustCompile(`Fecha de mandamiento:\s*(\d{2}/\d{2}/\d{4})`)
	headerNumeroRe       = regexp.MustCompile(`N[úu]mero de liquidaci[óo]n:\s*(\d+)`)
	headerEntidadRe      = regexp.MustCompile(`\((\d+)\)\s+(.+)`)
	headerVerificacionRe = regexp.MustCompile(`C[óo]digo Seguro De Verificaci[óo]n:\s*(\S+)`)
	headerFirmadoPorRe   = regexp.MustCompile(`Firmado Por\s+(.+?)\s+Firmado`)
	headerFechaFirmaRe   = regexp.MustCompile(`Firmado\s+(\d{2}/\d{2}/\d{4}\s+\d{2}:\d{2}:\d{2})`)
)

// ParseHeader pulls the identifying metadata out of page-one text. Every
// field is optional; missing markers leave zero values.
func ParseHeader(pageText string) liquidation.Header {
	var h liquidation.Header

	if m := headerEjercicioRe.FindStringSubmatch(pageText); m != nil {
		h.Ejercicio, _ = strconv.Atoi(m[1])
	}
	if m := headerMandamientoRe.FindStringSubmatch(pageText); m != nil {
		h.MandamientoPago = m[1]
	}
	if m := headerFechaRe.FindStringSubmatch(pageText); m != nil {
		if t, err := time.Parse("02/01/2006", m[1]); err == nil {
			h.FechaMandamiento = t
		}
	}
	if m := headerNumeroRe.FindStringSubmatch(pageText); m != nil {
		h.NumeroLiquidacion = m[1]
	}
	if m := headerEntidadRe.FindStringSubmatch(pageText); m != nil {
		h.CodigoEntidad = m[1]
		h.Entidad = strings.TrimSpace(firstLine(m[2]))
	}
	if m := headerVerificacionRe.FindStringSubmatch(pageText); m != nil {
		h.CodigoVerificacion = m[1]
	}
	if m := headerFirmadoPorRe.FindStringSubmatch(pageText); m != nil {
		h.FirmadoPor = strings.TrimSpace(m[1])
	}
	if m := headerFechaFirmaRe.FindStringSubmatch(pageText); m != nil {
		if t, err := time.Parse("02/01/2006 15:04:05", m[1]); err == nil {
			h.FechaFirma = t
		}
	}
	return h
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
