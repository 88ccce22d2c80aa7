// Package phonegen generates exhaustive Chinese mobile number lists from
// a carrier allocation table.
//
// The client runs fully in-process: it loads the table from SQLite, builds
// an in-memory lookup index and enumerates every matching number across a
// worker pool, writing the output to rolling text files.
//
//	client, err := phonegen.Open(
//	    phonegen.WithDatabase("data/phone_location.db"),
//	    phonegen.WithOutputDir("out"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	res, err := client.Generate(ctx, phonegen.Request{
//	    Prefix:    "138",
//	    Province:  "湖北",
//	    City:      "武汉",
//	    Trailing4: "1234",
//	})
//	for _, f := range res.Files {
//	    fmt.Println(f.Path, f.Lines)
//	}
//
// The allocation table is populated with the phonegen CLI:
//
//	phonegen import --csv phone_location.csv
package phonegen
