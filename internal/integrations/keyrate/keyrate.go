package keyrate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Dan9191/financial-time-machine/internal/config"
	"github.com/Dan9191/financial-time-machine/internal/models"
	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

const (
	soapNamespace = "http://www.w3.org/2003/05/soap-envelope"
	cbrNamespace  = "http://web.cbr.ru/"
	lookback      = 30 * 24 * time.Hour
)

// Client fetches the central bank key rate over SOAP and remembers the
// latest successful value
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
	now    func() time.Time

	mu     sync.RWMutex
	latest *models.KeyRate
}

// NewClient initializes a new key rate client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.KeyRateURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
		now: time.Now,
	}
}

// buildSOAPRequest creates a KeyRate request covering the last 30 days
func (c *Client) buildSOAPRequest() (string, error) {
	to := c.now()
	from := to.Add(-lookback)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	envelope := doc.CreateElement("soap12:Envelope")
	envelope.CreateAttr("xmlns:soap12", soapNamespace)
	body := envelope.CreateElement("soap12:Body")

	keyRate := body.CreateElement("KeyRate")
	keyRate.CreateAttr("xmlns", cbrNamespace)
	keyRate.CreateElement("fromDate").SetText(from.Format("2006-01-02"))
	keyRate.CreateElement("ToDate").SetText(to.Format("2006-01-02"))

	return doc.WriteToString()
}

// sendRequest posts the SOAP envelope
func (c *Client) sendRequest(ctx context.Context, soapRequest string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBufferString(soapRequest))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", cbrNamespace+"KeyRate")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("Key rate XML response: %s", string(body))
	return body, nil
}

// parseXMLResponse extracts the most recent rate from the diffgram
func parseXMLResponse(rawBody []byte) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("failed to parse XML: %w", err)
	}

	krElements := doc.FindElements("//diffgram/KeyRate/KR")
	if len(krElements) == 0 {
		return 0, fmt.Errorf("no key rate data found in XML")
	}

	// rows are ordered newest first
	rateElement := krElements[0].FindElement("./Rate")
	if rateElement == nil {
		return 0, fmt.Errorf("rate element not found in XML")
	}

	rate, err := strconv.ParseFloat(strings.TrimSpace(rateElement.Text()), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse rate: %w", err)
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("rate %q is not a finite number", rateElement.Text())
	}
	return rate, nil
}

// Fetch retrieves the current key rate without touching the stored value
func (c *Client) Fetch(ctx context.Context) (float64, error) {
	soapRequest, err := c.buildSOAPRequest()
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	body, err := c.sendRequest(ctx, soapRequest)
	if err != nil {
		return 0, err
	}
	return parseXMLResponse(body)
}

// Refresh fetches the key rate and stores it as the latest value
func (c *Client) Refresh(ctx context.Context) (models.KeyRate, error) {
	rate, err := c.Fetch(ctx)
	if err != nil {
		c.log.Errorf("Failed to refresh key rate: %v", err)
		return models.KeyRate{}, err
	}

	kr := models.KeyRate{Rate: rate, UpdatedAt: c.now()}
	c.mu.Lock()
	c.latest = &kr
	c.mu.Unlock()

	c.log.Infof("Retrieved key rate: %.2f%%", rate)
	return kr, nil
}

// Latest returns the last successfully fetched key rate
func (c *Client) Latest() (models.KeyRate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.latest == nil {
		return models.KeyRate{}, false
	}
	return *c.latest, true
}
