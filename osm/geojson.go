package osm

import (
	geojson "github.com/paulmach/go.geojson"
)

// FeatureCollection renders centers as GeoJSON points carrying the center
// attributes as properties.
func FeatureCollection(centers []RecyclingCenter) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, c := range centers {
		f := geojson.NewPointFeature([]float64{c.Lon, c.Lat})
		f.ID = c.ID
		f.SetProperty("name", c.Name)
		f.SetProperty("type", c.Type)
		f.SetProperty("address", c.Address)
		f.SetProperty("distance_km", c.Distance)
		fc.AddFeature(f)
	}
	return fc
}
