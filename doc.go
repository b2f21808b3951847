// pdk is the Patent Data Kit. It fetches patent application records from the
// PatentsView API, keeps them in an incremental cache, flattens them into
// tables and aggregates them into yearly statistics and maps.
//
// Data moves through the kit in stages. Interfaces for each stage live in this
// package, and the implementations which rely on other software live in
// sub-packages.
//
// 1. Source
//
//    A pdk.Source hands out one result page at a time. The patentsview
//    package pages through a live query, switching between GET and POST
//    depending on how long the query is, and stopping when a page comes back
//    short. The file package replays a page set that was saved earlier. It is
//    not the job of the source to interpret the records; a Source returns
//    pages exactly as the API shaped them.
//
// 2. Store
//
//    A pdk.Store is the cache which sits between the API and everything
//    else. Each fetched query is saved under a key (e.g. "2015q1" or
//    "cites_layer0") and never fetched again once it is on file. Stores exist
//    for plain JSON files, boltdb, leveldb and S3.
//
// 3. Normalizer
//
//    Flatten turns the nested patent records of a page into four flat tables:
//    patents, inventors, assignees and citations. Every row is kept;
//    deciding what counts is left to the aggregators.
//
// 4. Aggregator
//
//    The aggregate package folds pages into yearly summaries (counts by
//    patent type, inventor locations, unique citations and inventors, per
//    assignee statistics) and summaries into time series. The citations
//    usecase expands a set of patents into layers of cited patents.
//
// 5. Sink and Renderer
//
//    A pdk.Sink receives flattened tables (CSV, SQLite, Kafka). The viz
//    package renders summaries into heat maps and time series charts.
package pdk
