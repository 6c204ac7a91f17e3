package courier

import (
	"bytes"
	"html/template"
	"net/url"
)

// LabelData feeds the shipping-label template.
type LabelData struct {
	Carrier        string
	CarrierTitle   string
	AccentColor    string
	StoreName      string
	StoreAddress   string
	OrderNo        string
	TrackingNumber string
	Name           string
	Address        string
	City           string
	State          string
	Pincode        string
	Phone          string
	COD            bool
	CODAmount      float64
	BarcodeURL     string
	QRCodeURL      string
}

// Carrier branding for labels. Unknown carriers fall back to a generic header.
var carrierBranding = map[string]struct {
	Title string
	Color string
}{
	CarrierDelhivery: {"Delhivery", "#e4002b"},
	CarrierDTDC:      {"DTDC", "#0054a6"},
	CarrierBluedart:  {"Blue Dart", "#003da5"},
}

var labelTmpl = template.Must(template.New("label").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Shipping Label - {{.TrackingNumber}}</title>
<style>
  body { font-family: Arial, sans-serif; margin: 0; padding: 16px; }
  .label { border: 2px solid #000; width: 420px; }
  .header { background: {{.AccentColor}}; color: #fff; padding: 8px 12px; font-size: 20px; font-weight: bold; }
  .section { padding: 8px 12px; border-top: 1px solid #000; }
  .muted { color: #555; font-size: 11px; }
  .to { font-size: 15px; font-weight: bold; }
  .cod { font-size: 16px; font-weight: bold; color: #b00; }
  .codes { display: flex; justify-content: space-between; align-items: center; }
</style>
</head>
<body onload="window.print()">
<div class="label">
  <div class="header">{{.CarrierTitle}}</div>
  <div class="section">
    <div class="muted">From</div>
    <div>{{.StoreName}}</div>
    <div class="muted">{{.StoreAddress}}</div>
  </div>
  <div class="section">
    <div class="muted">Deliver To</div>
    <div class="to">{{.Name}}</div>
    <div>{{.Address}}</div>
    <div>{{.City}}, {{.State}} - {{.Pincode}}</div>
    <div>Ph: {{.Phone}}</div>
  </div>
  <div class="section">
    <div>Order: <b>{{.OrderNo}}</b></div>
    {{if .COD}}<div class="cod">COD: Collect ₹{{printf "%.2f" .CODAmount}}</div>{{else}}<div>PREPAID</div>{{end}}
  </div>
  <div class="section codes">
    <img src="{{.BarcodeURL}}" alt="barcode" height="60">
    <img src="{{.QRCodeURL}}" alt="qr" height="80" width="80">
  </div>
  <div class="section muted">AWB {{.TrackingNumber}}</div>
</div>
</body>
</html>
`))

// RenderLabel produces a printable HTML shipping label for a shipment.
func RenderLabel(data LabelData) (string, error) {
	branding, ok := carrierBranding[data.Carrier]
	if !ok {
		branding.Title = "Shipping Label"
		branding.Color = "#222"
	}
	data.CarrierTitle = branding.Title
	data.AccentColor = branding.Color

	if data.BarcodeURL == "" {
		data.BarcodeURL = "https://barcode.tec-it.com/barcode.ashx?code=Code128&data=" + url.QueryEscape(data.TrackingNumber)
	}
	if data.QRCodeURL == "" {
		data.QRCodeURL = "https://api.qrserver.com/v1/create-qr-code/?size=160x160&data=" + url.QueryEscape(data.TrackingNumber)
	}

	var buf bytes.Buffer
	if err := labelTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
