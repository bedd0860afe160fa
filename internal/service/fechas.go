package service

import (
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"
)

const (
	formatoDia = "2006-01-02"
	formatoMes = "2006-01"
)

// parseDia reads a YYYY-MM-DD date as local midnight in loc.
func parseDia(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(formatoDia, s, loc)
	if err != nil {
		return time.Time{}, apierror.Validation("Fecha inválida, se espera AAAA-MM-DD: " + s)
	}
	return t, nil
}

// rangoMes returns the local bounds [desde, hasta) of a YYYY-MM month.
// An empty mes means the month containing now.
func rangoMes(mes string, now time.Time, loc *time.Location) (string, time.Time, time.Time, error) {
	if mes == "" {
		mes = now.In(loc).Format(formatoMes)
	}
	desde, err := time.ParseInLocation(formatoMes, mes, loc)
	if err != nil {
		return "", time.Time{}, time.Time{}, apierror.Validation("Mes inválido, se espera AAAA-MM: " + mes)
	}
	return mes, desde, desde.AddDate(0, 1, 0), nil
}

// diaLocal is the calendar date of t in loc.
func diaLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(formatoDia)
}

// mesLocal is the calendar month of t in loc.
func mesLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(formatoMes)
}

func ubicacion(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
