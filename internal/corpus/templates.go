package corpus

// shortPrompts are terse chat-ops style requests.
var shortPrompts = []string{
	"list pods",
	"check db status",
	"hello",
	"what's the weather in denver?",
	"delete user 4091",
	"show routes",
	"get logs for pod-abc-123",
	"who is online?",
	"reboot server-main-db",
	"what is 2+2?",
}

// mediumPrompts are single-paragraph questions.
var mediumPrompts = []string{
	"Explain the difference between a Kubernetes Deployment and a StatefulSet.",
	"How do I configure a Tekton EventListener for a GitHub webhook?",
	"Write a Python function to parse a JSON file and return a list of all top-level keys.",
	"What are the pros and cons of using vLLM vs. TGI for inference serving?",
	"Summarize the following text: [placeholder for a 3-paragraph article]",
	"My OpenShift build is failing. What does the 'ImagePullBackOff' error mean?",
	"Translate this to German: 'My CI/CD pipeline is broken and I need to fix it before the demo.'",
}

// longTaskIdentifier appears exactly once in longTaskTemplate and is
// suffixed with the record index to keep long prompts distinct.
const longTaskIdentifier = "deploy-using-helm"

const longTaskTemplate = `
Please analyze this Tekton Task YAML for any syntax errors or best-practice violations:
apiVersion: tekton.dev/v1
kind: Task
metadata:
  name: deploy-using-helm
spec:
  params:
    - name: helm-chart-path
      description: The path to the helm chart
      type: string
    - name: release-name
      description: The name of the release
      type: string
  steps:
    - name: helm-deploy
      image: "alpine/helm:3.10.0"
      script: |
        #!/usr/bin/env sh
        echo "Deploying $(params.release-name) from $(params.helm-chart-path)..."
`

const hugeTraceTemplate = "\n" +
	"My application is crashing in production. Analyze this full stack trace and tell me the root cause.\n" +
	"`\n" +
	"Traceback (most recent call last):\n" +
	"  File \"/opt/app-root/src/main.py\", line 215, in <module>\n" +
	"    main()\n" +
	"  File \"/opt/app-root/src/main.py\", line 198, in main\n" +
	"    db.connect(os.environ.get('DATABASE_URL'))\n" +
	"  File \"/opt/app-root/lib/python3.9/site-packages/db_client/connector.py\", line 89, in _try_connect\n" +
	"    raise ConnectionTimeoutError(f\"Failed to connect to {host} after {retries} attempts\")\n" +
	"db_client.errors.ConnectionTimeoutError: Failed to connect to db.production.svc.cluster.local after 3 attempts\n" +
	"... (stack trace continues)\n" +
	"...\n" +
	"Last error received from driver:\n" +
	"psycopg2.OperationalError: could not connect to server: Connection refused\n" +
	"`\n"

// noiseLine is appended to hugeTraceTemplate a random number of times.
const noiseLine = "\n... (simulated repeating log noise)..."
