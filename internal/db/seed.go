package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/fire-triage/backend/internal/models"
)

// branch offices with coordinates; applied idempotently at startup
var seedOffices = []models.Office{
	{City: "Актау", Address: "Актау, 17-й микрорайон 22, Kazakhstan", Lat: 50.217021, Lon: 73.055987},
	{City: "Актобе", Address: "Актобе, проспект Алии Молдагуловой 44, Kazakhstan", Lat: 50.286412, Lon: 57.146268},
	{City: "Алматы", Address: "Алматы, проспект Аль-Фараби 77/7, Kazakhstan", Lat: 43.194670, Lon: 76.892684},
	{City: "Астана", Address: "Астана, улица Достык 16, Kazakhstan", Lat: 51.125321, Lon: 71.431921},
	{City: "Атырау", Address: "Атырау, улица Студенческая 52, Kazakhstan", Lat: 47.116670, Lon: 51.883330},
	{City: "Караганда", Address: "Караганда, проспект Нуркена Абдирова 12, Kazakhstan", Lat: 49.833330, Lon: 73.165800},
	{City: "Кокшетау", Address: "Кокшетау, проспект Назарбаева 4/2, Kazakhstan", Lat: 53.282440, Lon: 69.396920},
	{City: "Костанай", Address: "Костанай, проспект Аль-Фараби 65, Kazakhstan", Lat: 53.214350, Lon: 63.624630},
	{City: "Кызылорда", Address: "Кызылорда, улица Кунаева 4, Kazakhstan", Lat: 44.852780, Lon: 65.509170},
	{City: "Павлодар", Address: "Павлодар, улица Луговая 16, Kazakhstan", Lat: 53.019970, Lon: 76.249335},
	{City: "Петропавловск", Address: "Петропавловск, улица Букетова 31A, Kazakhstan", Lat: 54.872780, Lon: 69.143000},
	{City: "Тараз", Address: "Тараз, улица Желтоксан 86, Kazakhstan", Lat: 42.900000, Lon: 71.366670},
	{City: "Уральск", Address: "Уральск, улица Ескалиева 177, Kazakhstan", Lat: 51.233330, Lon: 51.366670},
	{City: "Усть-Каменогорск", Address: "Усть-Каменогорск, улица Максима Горького 50, Kazakhstan", Lat: 49.964660, Lon: 82.608980},
	{City: "Шымкент", Address: "Шымкент, улица Кунаева 59, Kazakhstan", Lat: 42.277874, Lon: 69.587295},
}

// SeedOffices upserts the fixed branch roster keyed by city name. Office
// rows are read-only to the pipeline.
func (s *Store) SeedOffices(ctx context.Context) error {
	for _, o := range seedOffices {
		_, err := s.Pool.Exec(ctx, `
			INSERT INTO offices (id, city, address, lat, lon)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (city) DO UPDATE SET
				address = EXCLUDED.address,
				lat = EXCLUDED.lat,
				lon = EXCLUDED.lon
		`, uuid.New(), o.City, o.Address, o.Lat, o.Lon)
		if err != nil {
			return err
		}
	}
	return nil
}
