// Package geosearch provides an embedded Go client for the geosearch
// discovery service backed by Redis with the query engine module.
//
//	client, _ := geosearch.New(geosearch.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	page, _ := client.Search().
//	    Keyword("rice").
//	    Category(geosearch.CategoryGroceries).
//	    Near(-1.283, 36.817, 5000).
//	    SortBy(geosearch.SortDistance, geosearch.Asc).
//	    Limit(20).
//	    Do(ctx)
//
//	nearby, _ := client.Geo().Nearby(ctx, geosearch.NearbyRequest{
//	    Latitude: -1.283, Longitude: 36.817, RadiusMeters: 1000,
//	})
package geosearch
