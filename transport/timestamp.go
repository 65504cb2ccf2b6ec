package transport

/*------------------------------------------------------------------
 *
 * Purpose:	Wall-clock stamps for transfer lifecycle log lines, so a
 *		receiver log can be correlated with a sender log across
 *		hosts without depending on either side's logger config.
 *
 *------------------------------------------------------------------*/

import (
	"time"

	"github.com/lestrrat-go/strftime"
)

var lifecycleStamp *strftime.Strftime

func init() {
	var f, err = strftime.New("%Y-%m-%dT%H:%M:%S")
	if err != nil {
		panic("hnet: lifecycle stamp format: " + err.Error())
	}

	lifecycleStamp = f
}

func stampNow() string {
	return lifecycleStamp.FormatString(time.Now())
}
