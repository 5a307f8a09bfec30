// Package domain models the hazard signals shown on the Davao City coastal
// monitoring dashboard.
//
// # Sea Level Data Source
//
// Sea level readings come from the IOC Sea Level Station Monitoring Facility
// (https://www.ioc-sealevelmonitoring.org). The station page at bgraph.php
// serves an HTML table when queried with output=tab; each row carries a UTC
// timestamp and several sensor columns:
//
//	column 0: "2024-04-26 15:10:00"  (UTC, one row per minute)
//	column 1: prs  (pressure sensor, meters)
//	column 2: enc  (encoder sensor, meters)
//	column 3: rad  (radar sensor, detided, meters)
//
// The radar (detided) column is used for anomaly detection because the tidal
// component has already been removed, so a deviation from the recent baseline
// is a genuine surface disturbance rather than the tide coming in.
//
// Rows with an empty or non-numeric rad value are skipped during parsing;
// a partially bad table never aborts the batch.
//
// # Anomaly Classification
//
// The monitor keeps the last 30 one-minute readings and compares the newest
// level against a baseline mean. With 15 or more readings the newest 5 are
// excluded from the baseline, so an ongoing surge cannot pollute the average
// it is being measured against. Deviation thresholds (meters, inclusive):
//
//	>= 0.50  CRITICAL
//	>= 0.30  WARNING
//	 < 0.30  NORMAL
//
// Fewer than 10 readings is reported as INSUFFICIENT_DATA rather than risking
// a false positive on a cold buffer, and an empty buffer as NO_DATA.
//
// # Trend
//
// Over the newest 5 readings, the mean of the oldest two is compared with the
// mean of the newest two. A difference above 5cm either way is RISING or
// FALLING; otherwise STABLE.
//
// # Collaborating Feeds
//
// Earthquakes come from the USGS GeoJSON summary feeds filtered to the
// Philippines region, tide extremes from the Stormglass API (quota-limited,
// cached), and weather plus air quality from Open-Meteo. All of these are
// stateless fetch-and-shape calls; only the sea level monitor holds state.
package domain
