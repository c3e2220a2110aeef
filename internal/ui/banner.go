package ui

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/utils"
)

const bannerText = `
 ___       _                  ___                          _
/ __| __ _| |__ _ _ _ _  _   | __|__ _ _ ___ __ __ _ __| |_
\__ \/ _' | / _' | '_| || |  | _/ _ \ '_/ -_) _/ _' (_-<  _|
|___/\__,_|_\__,_|_|  \_, |  |_|\___/_| \___\__\__,_/__/\__|
                      |__/
 @fr4nk3nst1ner
`

// ColorizeText applies a random color fade to the input text
func ColorizeText(text string) string {
	random := rand.New(rand.NewSource(time.Now().UnixNano()))

	startColor := pterm.NewRGB(uint8(random.Intn(256)), uint8(random.Intn(256)), uint8(random.Intn(256)))
	endColor := pterm.NewRGB(uint8(random.Intn(256)), uint8(random.Intn(256)), uint8(random.Intn(256)))

	chars := strings.Split(text, "")
	period := len(chars) / 2
	if period == 0 {
		period = 1
	}

	var b strings.Builder
	for i, ch := range chars {
		b.WriteString(startColor.Fade(0, float32(len(chars)), float32(i%period), endColor).Sprint(ch))
	}
	return b.String()
}

// PrintBanner displays the application banner
func PrintBanner(silence bool) {
	if !silence {
		fmt.Println(ColorizeText(bannerText))
	}
}

// FormatURL formats a URL, optionally as a clickable terminal hyperlink using OSC 8 escape sequence
func FormatURL(url, label string, useHyperlink bool) string {
	if !useHyperlink {
		return url
	}
	// Using \a (BEL) as the terminator for wider compatibility
	return fmt.Sprintf("\033]8;;%s\a%s\033]8;;\a", url, label)
}

// ColorizeSalary colors a dollar amount by pay band
func ColorizeSalary(amount float64) string {
	formatted := utils.FormatUSD(amount)

	switch {
	case amount <= 0:
		return pterm.Red("Not Available")
	case amount >= 250000:
		return pterm.Green(formatted)
	case amount >= 150000:
		return pterm.LightGreen(formatted)
	case amount >= 100000:
		return pterm.Yellow(formatted)
	default:
		return pterm.Red(formatted)
	}
}

// ColorizeRange colors a low-mid-high forecast
func ColorizeRange(low, mid, high float64) string {
	return fmt.Sprintf("%s - %s (mid %s)", ColorizeSalary(low), ColorizeSalary(high), ColorizeSalary(mid))
}
