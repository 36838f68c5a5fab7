// Package scraper reads the club's fixtures pages and turns them into matches.
//
// A fixtures page holds one div.fixtures-holder block per match. For every
// block the scraper also fetches the club's match page (for the TV channel
// logo) and asks the wiki's Cargo export which page documents a match on that
// date. Blocks without a final date and youth league fixtures are skipped.
// A linked block that cannot be read fails the whole listing.
//
// Season pages are discovered by probing ?season=N from the first configured
// season upwards for as long as the page shows a "last match" box.
package scraper
