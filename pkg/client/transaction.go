package client

import (
	"fmt"
	"time"
)

// Transaction id layout, shared with the web client: app id, timestamp in
// Jakarta time (YYMMDDHHmmssSSS), fixed identifier, changeable digit.
const (
	txnAppID      = "AWB32"
	txnIdentifier = "00000"
	txnChangeable = "0"
)

// Asia/Jakarta is UTC+7. A fixed zone avoids depending on the host tzdata.
var jakarta = time.FixedZone("UTC+7", 7*60*60)

// newTransactionID builds the transactionid header value for the given
// instant. The id is generated once per client instance and reused on every
// request it sends.
func newTransactionID(now time.Time) string {
	t := now.In(jakarta)
	stamp := t.Format("060102150405") + fmt.Sprintf("%03d", t.Nanosecond()/int(time.Millisecond))
	return txnAppID + stamp + txnIdentifier + txnChangeable
}
