package geo

import (
	"errors"
	"math"
)

// ErrInvalidCoordinate возвращается при NaN/Inf во входных координатах
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Средний радиус Земли в километрах
const earthRadiusKm = 6371.0

// Valid проверяет, что пара координат пригодна для вычисления расстояния
func Valid(lat, lon float64) bool {
	return !math.IsNaN(lat) && !math.IsInf(lat, 0) &&
		!math.IsNaN(lon) && !math.IsInf(lon, 0)
}

// DistanceKm вычисляет расстояние по дуге большого круга между двумя точками
// по формуле гаверсинуса. Координаты задаются в градусах.
func DistanceKm(lat1, lon1, lat2, lon2 float64) (float64, error) {
	if !Valid(lat1, lon1) || !Valid(lat2, lon2) {
		return 0, ErrInvalidCoordinate
	}

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c, nil
}
